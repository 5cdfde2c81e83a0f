package sie

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitWords(t *testing.T) {
	cases := []struct {
		in  string
		out []string
	}{
		{
			`#KONTO 1930 Bankkonto`,
			[]string{"#KONTO", "1930", "Bankkonto"},
		}, {
			`#FNAMN "Kastelo AB"`,
			[]string{"#FNAMN", "Kastelo AB"},
		}, {
			"#RAR\t0\t20240101  20241231",
			[]string{"#RAR", "0", "20240101", "20241231"},
		}, {
			`#VER "A" "12" 20240115 "Hyra \"jan\"" 20240116`,
			[]string{"#VER", "A", "12", "20240115", `Hyra "jan"`, "20240116"},
		}, {
			`#VER A 1 20240101 "C:\\temp\\"`,
			[]string{"#VER", "A", "1", "20240101", `C:\temp\`},
		}, {
			`#PROGRAM C:\tmp\sie.exe 1.0`,
			[]string{"#PROGRAM", `C:\tmp\sie.exe`, "1.0"},
		}, {
			`#FNAMN ""`,
			[]string{"#FNAMN", ""},
		}, {
			`#TRANS 1930 {} -1957.00`,
			[]string{"#TRANS", "1930", "", "-1957.00"},
		}, {
			`#TRANS 4010 {1 "100" 6 "P 7"} 250.00 20240301 "Material"`,
			[]string{"#TRANS", "4010", `1 "100" 6 "P 7"`, "250.00", "20240301", "Material"},
		}, {
			`#KONTO 6310 "Försäkringar"`,
			[]string{"#KONTO", "6310", "Försäkringar"},
		}, {
			`#FNAMN "Unterminated name`,
			[]string{"#FNAMN", "Unterminated name"},
		}, {
			"   ",
			nil,
		},
	}

	for _, tc := range cases {
		res := splitWords(tc.in)
		if !reflect.DeepEqual(res, tc.out) {
			t.Errorf("split(%q) -> %#v, expected %#v", tc.in, res, tc.out)
		}
	}
}

func TestSplitWordsLongLine(t *testing.T) {
	name := strings.Repeat("å", 1<<20)
	res := splitWords(`#FNAMN "` + name + `"`)
	if len(res) != 2 || res[1] != name {
		t.Errorf("long quoted token not kept whole, got %d words", len(res))
	}
}

func TestWordAt(t *testing.T) {
	words := splitWords(`#IB 0 1930`)
	if got := wordAt(words, 2); got != "1930" {
		t.Errorf("wordAt(2) = %q", got)
	}
	if got := wordAt(words, 3); got != "" {
		t.Errorf("wordAt past end = %q, expected empty", got)
	}
}
