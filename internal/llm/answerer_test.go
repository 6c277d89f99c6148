package llm

import "testing"

func TestParseAnswerMCQ(t *testing.T) {
	cases := map[string]string{
		"The answer is B.":       "B",
		"(a) because it treats":  "A",
		"I believe C is correct": "C",
		"no letter here":         Invalid,
	}
	for input, want := range cases {
		if got := ParseAnswer(MCQ, input); got != want {
			t.Errorf("ParseAnswer(MCQ, %q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseAnswerYesNo(t *testing.T) {
	cases := map[string]string{
		"Yes, this is consistent with the findings.": "Yes",
		"no, it is not indicated":                     "No",
		"unclear":                                     Invalid,
	}
	for input, want := range cases {
		if got := ParseAnswer(YesNo, input); got != want {
			t.Errorf("ParseAnswer(YesNo, %q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseAnswerYesNoMaybe(t *testing.T) {
	if got := ParseAnswer(YesNoMaybe, "Maybe, insufficient evidence."); got != "Maybe" {
		t.Errorf("got %q, want Maybe", got)
	}
	if got := ParseAnswer(YesNoMaybe, "I am not sure either way."); got != Invalid {
		t.Errorf("got %q, want INVALID", got)
	}
}
