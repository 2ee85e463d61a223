package main

import "testing"

func TestGenerate(t *testing.T) {
	data := generate()
	last := data[len(data)-len(overflowTargets)-1]
	if last.N != 92 || last.Result != "12200160415121876738" {
		t.Errorf("last representable entry = %+v, want f(92) = 12200160415121876738", last)
	}
	if data[10].Result != "89" {
		t.Errorf("f(10) = %s, want 89", data[10].Result)
	}
	for _, d := range data[len(data)-len(overflowTargets):] {
		if !d.Overflow || d.Result != "" {
			t.Errorf("overflow entry malformed: %+v", d)
		}
	}
}
