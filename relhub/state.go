package relhub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/relhub/relhub-core/providers/versioneer"
)

// MalformedVersionRecordError is returned when a stored release entry does
// not contain a parseable version where one is required. The calling
// workflow should halt rather than guess.
type MalformedVersionRecordError struct {
	Entry string
	Key   string
	Value string
}

func (e *MalformedVersionRecordError) Error() string {
	return fmt.Sprintf("release entry %q does not have a valid %s (%q)", e.Entry, e.Key, e.Value)
}

// ReleaseEntryFor returns the name of the release entry for the given
// coordinating major version.
func ReleaseEntryFor(major int) string {
	return fmt.Sprintf("release-a%d", major)
}

// NightlyEntryFor returns the name of the nightly entry for the given
// coordinating major version. The major 6 nightly entry predates the
// naming scheme and keeps its historical name.
func NightlyEntryFor(major int) string {
	if major == 6 {
		return "nightly"
	}
	return fmt.Sprintf("nightly-a%d", major)
}

// Component is one key/value pair of a release entry, e.g. a dependency
// version or an artifact checksum.
type Component struct {
	Key   string
	Value string
}

// ReleaseEntry is one named release record: the ordered dependency versions
// and hashes captured for one coordinated release.
type ReleaseEntry struct {
	Name       string
	Components []Component
}

// Component returns the value of the named component.
func (e ReleaseEntry) Component(key string) (string, bool) {
	for _, c := range e.Components {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

// Version parses the named component as a version. A missing or unparseable
// value is reported as a MalformedVersionRecordError naming the entry.
func (e ReleaseEntry) Version(key string) (versioneer.Version, error) {
	value, _ := e.Component(key)
	version, err := versioneer.NewVersion(value)
	if err != nil {
		return versioneer.Version{}, &MalformedVersionRecordError{Entry: e.Name, Key: key, Value: value}
	}
	return version, nil
}

// ReleaseState holds the persisted release entries of the coordinating
// repository. Entry and component order is preserved across load and save,
// so that the file stays human-readable and diffs stay minimal.
type ReleaseState struct {
	entries []ReleaseEntry
}

// Entry returns the named release entry.
func (s *ReleaseState) Entry(name string) (ReleaseEntry, bool) {
	for _, e := range s.entries {
		if e.Name == name {
			return e, true
		}
	}
	return ReleaseEntry{}, false
}

// Names returns the entry names in file order.
func (s *ReleaseState) Names() []string {
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.Name)
	}
	return names
}

// SetEntry replaces the entry with the same name, keeping its position, or
// appends a new one.
func (s *ReleaseState) SetEntry(entry ReleaseEntry) {
	for i, e := range s.entries {
		if e.Name == entry.Name {
			s.entries[i] = entry
			return
		}
	}
	s.entries = append(s.entries, entry)
}

// Value resolves a lookup path of the form entry name, component key.
func (s *ReleaseState) Value(entryName, key string) (string, error) {
	entry, ok := s.Entry(entryName)
	if !ok {
		return "", fmt.Errorf("couldn't find %q in the release state", entryName)
	}
	value, ok := entry.Component(key)
	if !ok {
		return "", fmt.Errorf("couldn't find %q in the release state", entryName+"::"+key)
	}
	return value, nil
}

// LoadReleaseState decodes release entries from their JSON form.
//
// A json.Decoder token walk is used instead of plain unmarshalling to keep
// the original entry and component order.
func LoadReleaseState(r io.Reader) (*ReleaseState, error) {
	d := json.NewDecoder(r)

	t, err := d.Token()
	if err != nil || t != json.Delim('{') {
		return nil, fmt.Errorf("release state must be a JSON object: %v", err)
	}

	state := &ReleaseState{}
	for d.More() {
		nameToken, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("unable to decode release state: %w", err)
		}
		name, ok := nameToken.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected release entry name token %v", nameToken)
		}

		entry, err := decodeEntry(d, name)
		if err != nil {
			return nil, err
		}
		state.entries = append(state.entries, entry)
	}

	if _, err := d.Token(); err != nil {
		return nil, fmt.Errorf("unable to decode release state: %w", err)
	}

	return state, nil
}

// decodeEntry decodes one release entry object, keeping component order.
func decodeEntry(d *json.Decoder, name string) (ReleaseEntry, error) {
	entry := ReleaseEntry{Name: name}

	t, err := d.Token()
	if err != nil || t != json.Delim('{') {
		return entry, fmt.Errorf("release entry %q must be a JSON object: %v", name, err)
	}

	for d.More() {
		keyToken, err := d.Token()
		if err != nil {
			return entry, fmt.Errorf("unable to decode release entry %q: %w", name, err)
		}
		key, ok := keyToken.(string)
		if !ok {
			return entry, fmt.Errorf("unexpected component key token %v in release entry %q", keyToken, name)
		}

		var value string
		if err := d.Decode(&value); err != nil {
			return entry, fmt.Errorf("release entry %q has a non-string %q component: %w", name, key, err)
		}
		entry.Components = append(entry.Components, Component{Key: key, Value: value})
	}

	if _, err := d.Token(); err != nil {
		return entry, fmt.Errorf("unable to decode release entry %q: %w", name, err)
	}

	return entry, nil
}

// Write renders the release entries back to their JSON form, in order, with
// the 4-space indentation the file is maintained with.
func (s *ReleaseState) Write(w io.Writer) error {
	buf := &bytes.Buffer{}
	buf.WriteString("{\n")

	for i, entry := range s.entries {
		name, err := json.Marshal(entry.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(buf, "    %s: {", name)

		for j, c := range entry.Components {
			key, err := json.Marshal(c.Key)
			if err != nil {
				return err
			}
			value, err := json.Marshal(c.Value)
			if err != nil {
				return err
			}
			fmt.Fprintf(buf, "\n        %s: %s", key, value)
			if j != len(entry.Components)-1 {
				buf.WriteString(",")
			} else {
				buf.WriteString("\n    ")
			}
		}

		buf.WriteString("}")
		if i != len(s.entries)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}

	buf.WriteString("}")

	_, err := w.Write(buf.Bytes())
	return err
}

// LoadReleaseStateFile loads release entries from a file.
func LoadReleaseStateFile(path string) (*ReleaseState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open the release state file: %w", err)
	}
	defer f.Close()

	state, err := LoadReleaseState(f)
	if err != nil {
		return nil, fmt.Errorf("unable to load %s: %w", path, err)
	}
	return state, nil
}

// WriteFile saves the release entries to a file.
func (s *ReleaseState) WriteFile(path string) error {
	buf := &bytes.Buffer{}
	if err := s.Write(buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("unable to write the release state file: %w", err)
	}
	return nil
}
