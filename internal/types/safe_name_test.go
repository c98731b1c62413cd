package types

import "testing"

func TestSafeName_CollapsesAndLowercases(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"My Run 01", "my_run_01"},
		{"  padded  ", "padded"},
		{"weird---name!!", "weird_name"},
		{"Run/2024/08", "run_2024_08"},
		{"___", "unnamed"},
		{"", "unnamed"},
	}
	for _, tc := range cases {
		if got := SafeName(tc.in); got != tc.want {
			t.Errorf("SafeName(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestDedupeSafeName_SuffixesFromTwo(t *testing.T) {
	existing := map[string]bool{"sample": true, "sample_2": true}
	got := DedupeSafeName("sample", func(s string) bool { return existing[s] })
	if got != "sample_3" {
		t.Fatalf("expected sample_3, got %q", got)
	}
}

func TestDedupeSafeName_FreeBaseUnchanged(t *testing.T) {
	got := DedupeSafeName("fresh", func(string) bool { return false })
	if got != "fresh" {
		t.Fatalf("expected fresh, got %q", got)
	}
}

func TestRunRelativePath_RequiresLoadedHierarchy(t *testing.T) {
	run := &Run{SafeName: "run_1"}
	if _, err := run.RelativePath(); err == nil {
		t.Fatalf("expected error when hierarchy not preloaded")
	}
	run.Sample = &Sample{
		SafeName: "sample_1",
		Project: &Project{
			SafeName: "project_1",
			Group:    &Group{SafeName: "group_1"},
		},
	}
	path, err := run.RelativePath()
	if err != nil {
		t.Fatalf("RelativePath: %v", err)
	}
	if path != "group_1/project_1/sample_1/run_1" {
		t.Fatalf("unexpected path %q", path)
	}
}
