package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatal(err)
	}
}

func TestReadCSV(t *testing.T) {
	input := `uuid,part_number,part_content,analysis
u1,3,some text,"{""articles de loi"": [""Art. 41 CO"", """", ""art. 12""]}"
u2,1,other text,"{""articles de loi"": []}"
u3,2,broken,not json at all
u4,5,only blanks,"{""articles de loi"": ["""", ""   ""]}"
`
	elements, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(elements))
	}

	e := elements[0]
	if e.UUID != "u1" || e.Part != "3" || e.Content != "some text" {
		t.Errorf("unexpected element: %+v", e)
	}
	if e.ID() != "u1_3" {
		t.Errorf("ID = %q, want u1_3", e.ID())
	}
	if !reflect.DeepEqual(e.Citation, []string{"Art. 41 CO", "art. 12"}) {
		t.Errorf("citations = %v, blank entries should be filtered", e.Citation)
	}
}

func TestReadJSONL(t *testing.T) {
	input := `{"uuid":"u2","part_number":7,"part_content":"txt","analysis":{"articles de loi":["Art. 286 SchKG"]}}
not json
{"uuid":"u3","part_number":1,"analysis":{"articles de loi":["art. 9 LTF"]}}
{"uuid":"u5","part_number":2,"analysis":{"articles de loi":[]}}
`
	elements, err := ReadJSONL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(elements))
	}
	if elements[0].UUID != "u2" || elements[0].Part != "7" || elements[0].Content != "txt" {
		t.Errorf("unexpected element: %+v", elements[0])
	}
	if elements[1].ID() != "u3_1" {
		t.Errorf("ID = %q, want u3_1", elements[1].ID())
	}
}

func TestReadJSONL_StringEncodedExport(t *testing.T) {
	// Some dumps carry part_number as a string and the analysis column
	// double-encoded as a JSON string.
	input := `{"uuid":"u1","part_number":"3","analysis":"{\"articles de loi\": [\"Art. 41 CO\"]}"}
{"uuid":"u2","part_number":"4","part_content":"txt","analysis":"{\"articles de loi\": [\"art. 9 LTF\", \"\"]}"}
`
	elements, err := ReadJSONL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(elements))
	}
	if elements[0].ID() != "u1_3" {
		t.Errorf("ID = %q, want u1_3", elements[0].ID())
	}
	if !reflect.DeepEqual(elements[0].Citation, []string{"Art. 41 CO"}) {
		t.Errorf("citations = %v", elements[0].Citation)
	}
	if !reflect.DeepEqual(elements[1].Citation, []string{"art. 9 LTF"}) {
		t.Errorf("citations = %v, blank entries should be filtered", elements[1].Citation)
	}
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	writeCSV(t, path, [][]string{
		{"uuid", "part_number", "analysis"},
		{"u1", "1", `{"articles de loi": ["Art. 41 CO"]}`},
	})
	elements, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(elements) != 1 || elements[0].UUID != "u1" {
		t.Errorf("unexpected elements: %+v", elements)
	}

	if _, err := Load(filepath.Join(dir, "data.xml")); err == nil {
		t.Error("Load accepted an unsupported extension")
	}
}

func TestPreprocess(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.csv")
	outPath := filepath.Join(dir, "out.csv")
	failuresPath := filepath.Join(dir, "failures.jsonl")

	writeCSV(t, inPath, [][]string{
		{"uuid", "part_number", "part_content", "analysis"},
		{"u1", "1", "long decision text", `{"articles de loi": ["43 aCP", "125", "art. 128"]}`},
		{"u2", "2", "more text", `{"articles de loi": ["207ff."]}`},
	})

	stats, err := Preprocess(inPath, outPath, failuresPath)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	if stats.Elements != 2 {
		t.Errorf("Elements = %d, want 2", stats.Elements)
	}
	c := stats.Citations
	if c.Processed != 4 || c.Kept != 2 || c.Changed != 1 ||
		c.RemovedDigitOnly != 1 || c.RemovedGarbage != 1 || c.Enriched != 1 {
		t.Errorf("unexpected citation stats: %+v", c)
	}
	if stats.Failures != 2 || stats.ShortFragments != 1 {
		t.Errorf("Failures = %d, ShortFragments = %d", stats.Failures, stats.ShortFragments)
	}

	out, err := Load(outPath)
	if err != nil {
		t.Fatalf("loading preprocessed output: %v", err)
	}
	// u2 lost its only citation to preprocessing, so the loader drops it.
	if len(out) != 1 {
		t.Fatalf("got %d output elements, want 1", len(out))
	}
	if out[0].Content != "" {
		t.Error("part_content column survived preprocessing")
	}
	want := []string{"43 a CP", "art. 128 CP"}
	if !reflect.DeepEqual(out[0].Citation, want) {
		t.Errorf("u1 citations = %v, want %v", out[0].Citation, want)
	}

	failures, err := os.ReadFile(failuresPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Count(strings.TrimSpace(string(failures)), "\n") + 1
	if lines != 3 {
		t.Errorf("failures log has %d lines, want 3", lines)
	}
	for _, reason := range []string{"digit_only", "page_reference", "short_fragment"} {
		if !strings.Contains(string(failures), reason) {
			t.Errorf("failures log missing reason %q", reason)
		}
	}
}
