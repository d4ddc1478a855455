package dot

import (
	"strings"
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"
	"github.com/pplang/pplang/token"
)

func TestScanner(t *testing.T) {
	tests := map[string]struct {
		in   string
		want []token.Token
	}{
		"Empty": {
			in:   "",
			want: []token.Token{{Type: token.EOF}},
		},
		"SingleCharacterID": {
			in: "a",
			want: []token.Token{
				{Type: token.ID, Literal: "a", Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 1}},
				{Type: token.EOF},
			},
		},
		"OnlyWhitespace": {
			in:   "\t \n \t\t   \r\n",
			want: []token.Token{{Type: token.EOF}},
		},
		"Keyword": {
			in: "digraph",
			want: []token.Token{
				{Type: token.Digraph, Literal: "digraph", Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 7}},
				{Type: token.EOF},
			},
		},
		"KeywordIsCaseInsensitive": {
			in: "DiGrApH",
			want: []token.Token{
				{Type: token.Digraph, Literal: "DiGrApH", Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 7}},
				{Type: token.EOF},
			},
		},
		"Terminals": {
			in: "{}[]:;=,",
			want: []token.Token{
				{Type: token.LeftBrace, Literal: "{", Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 1}},
				{Type: token.RightBrace, Literal: "}", Start: token.Position{Line: 1, Column: 2}, End: token.Position{Line: 1, Column: 2}},
				{Type: token.LeftBracket, Literal: "[", Start: token.Position{Line: 1, Column: 3}, End: token.Position{Line: 1, Column: 3}},
				{Type: token.RightBracket, Literal: "]", Start: token.Position{Line: 1, Column: 4}, End: token.Position{Line: 1, Column: 4}},
				{Type: token.Colon, Literal: ":", Start: token.Position{Line: 1, Column: 5}, End: token.Position{Line: 1, Column: 5}},
				{Type: token.Semicolon, Literal: ";", Start: token.Position{Line: 1, Column: 6}, End: token.Position{Line: 1, Column: 6}},
				{Type: token.Equal, Literal: "=", Start: token.Position{Line: 1, Column: 7}, End: token.Position{Line: 1, Column: 7}},
				{Type: token.Comma, Literal: ",", Start: token.Position{Line: 1, Column: 8}, End: token.Position{Line: 1, Column: 8}},
				{Type: token.EOF},
			},
		},
		"EdgeOperators": {
			in: "-> --",
			want: []token.Token{
				{Type: token.DirectedEdge, Literal: "->", Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 2}},
				{Type: token.UndirectedEdge, Literal: "--", Start: token.Position{Line: 1, Column: 4}, End: token.Position{Line: 1, Column: 5}},
				{Type: token.EOF},
			},
		},
		"QuotedString": {
			in: `"hello world"`,
			want: []token.Token{
				{Type: token.ID, Literal: `"hello world"`, Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 13}},
				{Type: token.EOF},
			},
		},
		"QuotedStringWithEscapedQuote": {
			in: `"he said \"hi\""`,
			want: []token.Token{
				{Type: token.ID, Literal: `"he said \"hi\""`, Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 17}},
				{Type: token.EOF},
			},
		},
		"Numeral": {
			in: "-3.14",
			want: []token.Token{
				{Type: token.ID, Literal: "-3.14", Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 5}},
				{Type: token.EOF},
			},
		},
		"LineCommentHash": {
			in: "# a comment\na",
			want: []token.Token{
				{Type: token.Comment, Literal: "# a comment", Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 11}},
				{Type: token.ID, Literal: "a", Start: token.Position{Line: 2, Column: 1}, End: token.Position{Line: 2, Column: 1}},
				{Type: token.EOF},
			},
		},
		"LineCommentSlash": {
			in: "// a comment\na",
			want: []token.Token{
				{Type: token.Comment, Literal: "// a comment", Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 12}},
				{Type: token.ID, Literal: "a", Start: token.Position{Line: 2, Column: 1}, End: token.Position{Line: 2, Column: 1}},
				{Type: token.EOF},
			},
		},
		"BlockComment": {
			in: "/* multi\nline */a",
			want: []token.Token{
				{Type: token.Comment, Literal: "/* multi\nline */", Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 2, Column: 7}},
				{Type: token.ID, Literal: "a", Start: token.Position{Line: 2, Column: 8}, End: token.Position{Line: 2, Column: 8}},
				{Type: token.EOF},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			scanner, err := NewScanner(strings.NewReader(test.in))
			require.NoErrorf(t, err, "NewScanner(%q)", test.in)

			for i, want := range test.want {
				tok, err := scanner.Next()
				require.NoErrorf(t, err, "Next() at i=%d", i)
				assert.EqualValuesf(t, tok, want, "Next() at i=%d", i)
			}
		})
	}

	t.Run("ErrorCases", func(t *testing.T) {
		tests := map[string]string{
			"UnterminatedQuotedString":  `"unterminated`,
			"UnterminatedBlockComment":  "/* unterminated",
			"IllegalStartCharacter":     "!",
			"MultipleDotsInNumeral":     "1.2.3",
			"NumeralWithoutDigit":       "-.",
			"MissingCommentMarker":      "/x",
			"DashWithoutSecondOperator": "-x",
		}

		for name, in := range tests {
			t.Run(name, func(t *testing.T) {
				scanner, err := NewScanner(strings.NewReader(in))
				require.NoErrorf(t, err, "NewScanner(%q)", in)

				var sawErr bool
				for range 10 {
					_, err := scanner.Next()
					if err != nil {
						sawErr = true
						break
					}
				}
				assert.Equalsf(t, sawErr, true, "expected scanning %q to produce an error", in)
			})
		}
	})
}
