package filter

import "testing"

func TestComparisons(t *testing.T) {
	tests := []struct {
		name string
		got  Expression
		want string
	}{
		{"eq", Eq("status", "active"), "status:=active"},
		{"not eq", NotEq("status", "archived"), "status:!=archived"},
		{"gt", Gt("price", "10"), "price:>10"},
		{"lt", Lt("price", "100"), "price:<100"},
		{"gte", Gte("rating", "4"), "rating:>=4"},
		{"lte", Lte("rating", "5"), "rating:<=5"},
		{"range", Range("year", "2000", "2010"), "year:[2000..2010]"},
		{"in", In("doc_id", []string{"a", "b", "c"}), "doc_id:[a,b,c]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got.String() != tc.want {
				t.Errorf("got %q, want %q", tc.got, tc.want)
			}
		})
	}
}

func TestIn_EscapesBackticks(t *testing.T) {
	got := In("doc_id", []string{"x`y", "z"})
	want := "doc_id:[x\\`y,z]"
	if got.String() != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAnd_SkipsEmpty(t *testing.T) {
	got := And(Eq("a", "1"), "", Gt("b", "2"))
	if got.String() != "a:=1 && b:>2" {
		t.Errorf("unexpected conjunction: %q", got)
	}

	if !And("", " ").IsEmpty() {
		t.Error("expected empty conjunction of empty expressions")
	}
}

func TestOr(t *testing.T) {
	got := Or(Eq("color", "red"), Eq("color", "blue"))
	if got.String() != "color:=red || color:=blue" {
		t.Errorf("unexpected disjunction: %q", got)
	}
}

func TestAnd_SingleExpressionUnchanged(t *testing.T) {
	got := And(In("doc_id", []string{"1"}))
	if got.String() != "doc_id:[1]" {
		t.Errorf("unexpected result: %q", got)
	}
}
