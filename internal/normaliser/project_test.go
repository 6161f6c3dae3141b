package normaliser

import "testing"

func TestParseProjectField_MatchingCodeAndName(t *testing.T) {
	code, name := ParseProjectField("12345 阿尔法项目")
	if code == nil || *code != "12345" {
		t.Fatalf("code = %v, want 12345", code)
	}
	if name == nil || *name != "阿尔法项目" {
		t.Fatalf("name = %v, want 阿尔法项目", name)
	}
}

func TestParseProjectField_NonMatchingKeepsOriginalAsName(t *testing.T) {
	code, name := ParseProjectField("内部差旅无项目")
	if code != nil {
		t.Errorf("code = %v, want nil", code)
	}
	if name == nil || *name != "内部差旅无项目" {
		t.Errorf("name = %v, want original text", name)
	}
}

func TestParseProjectField_BlankYieldsNilBoth(t *testing.T) {
	code, name := ParseProjectField("   ")
	if code != nil || name != nil {
		t.Errorf("blank field should yield (nil, nil), got (%v, %v)", code, name)
	}
}
