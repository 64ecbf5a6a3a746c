package europepmc

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// Export formats for method sections.
const (
	FormatJSONL = "jsonl"
	FormatTSV   = "tsv"
)

// WriteMethods writes method sections to w in the given format.
func WriteMethods(w io.Writer, format string, sections []MethodSection) error {
	switch format {
	case FormatJSONL, "":
		return WriteMethodsJSONL(w, sections)
	case FormatTSV:
		return WriteMethodsTSV(w, sections)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteMethodsJSONL writes one {"pmcid","methods"} object per line.
func WriteMethodsJSONL(w io.Writer, sections []MethodSection) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, s := range sections {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteMethodsTSV writes a pmcid/methods table with a header row.
// Fields containing tabs, quotes or newlines are quoted.
func WriteMethodsTSV(w io.Writer, sections []MethodSection) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write([]string{"pmcid", "methods"}); err != nil {
		return err
	}
	for _, s := range sections {
		if err := cw.Write([]string{s.PMCID, s.Methods}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteIDs writes one identifier per line.
func WriteIDs(w io.Writer, ids []string) error {
	bw := bufio.NewWriter(w)
	for _, id := range ids {
		if _, err := bw.WriteString(id + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
