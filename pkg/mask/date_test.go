package mask

import "testing"

func TestDate(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"0":            "0",
		"01":           "01",
		"010":          "01/0",
		"0102":         "01/02",
		"01022":        "01/02/2",
		"01022020":     "01/02/2020",
		"0102202099":   "01/02/2020",
		"01/02/2020":   "01/02/2020",
		"ab01-02.2020": "01/02/2020",
		"1/2/":         "12",
		"٣١":           "",
	}
	for input, want := range cases {
		if got := Date(input); got != want {
			t.Errorf("Date(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDate_Idempotent(t *testing.T) {
	for _, input := range []string{"0102", "01022020", "31/12/1999x"} {
		once := Date(input)
		if twice := Date(once); twice != once {
			t.Errorf("Date not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}
