package printer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/teleivo/assertive/require"

	"github.com/pplang/pplang/ppconfig"
	"github.com/pplang/pplang/printer"
)

func TestPrint(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"GraphEmpty": {
			in: `strict graph {
			}


			`,
			want: `strict graph {}`,
		},
		"GraphWithID": {
			in: `strict graph
					"galaxy"     {}`,
			want: `strict graph "galaxy" {}`,
		},
		"NodeStmtWithSingleAttribute": {
			in: `graph {
A        	[ 	label="blue",]
			}`,
			want: "graph {\n  A [label=\"blue\"];\n}",
		},
		"NodeStmtWithMultipleAttributes": {
			in: `graph {
A     [ 	label="blue", color=grey; size=0.1,]
			}`,
			want: "graph {\n  A [label=\"blue\", color=grey, size=0.1];\n}",
		},
		"EdgeStmtDigraph": {
			in: `digraph {
			3 	->     2->4  [
		color = "blue", len = 2.6
	]; rank=same;}
`,
			want: "digraph {\n  3 -> 2 -> 4 [color=\"blue\", len=2.6];\n  rank=same;\n}",
		},
		"NodeStatementsWithPorts": {
			in: `graph {

				A:"north":n

		B:"center":_ C:"south"
			D:n

			}`,
			want: "graph {\n  A:\"north\":n;\n\n  B:\"center\":_;\n  C:\"south\";\n  D:n;\n}",
		},
		"AttrStmtsEmpty": {
			in:   `graph { node []; edge[]; graph[];}`,
			want: "graph {\n  node [];\n  edge [];\n  graph [];\n}",
		},
		"AttributeStmtWithSingleAttribute": {
			in: `graph {
label="blue";
minlen=2;
color=grey;
			}`,
			want: "graph {\n  label=\"blue\";\n  minlen=2;\n  color=grey;\n}",
		},
		"Subgraph": {
			in: `digraph {
A;subgraph family {
				label   = "parents";
			Parent1 -> Child1; Parent2 -> Child2
				subgraph 	"grandparents"  {
		label   = "grandparents"
Grandparent1  -> Parent1; Grandparent2 -> Parent1;
 Grandparent3  -> Parent2; Grandparent4 -> Parent2;
	  	}
			}
}`,
			want: `digraph {
  A;
  subgraph family {
    label="parents";
    Parent1 -> Child1;
    Parent2 -> Child2;
    subgraph "grandparents" {
      label="grandparents";
      Grandparent1 -> Parent1;
      Grandparent2 -> Parent1;
      Grandparent3 -> Parent2;
      Grandparent4 -> Parent2;
    };
  };
}`,
		},
		"SubgraphWithoutKeyword": {
			in: `graph
				{
			{A -- B; C--E}
}`,
			want: "graph {\n  {\n    A -- B;\n    C -- E;\n  };\n}",
		},
		"CommentsBeforeGraph": {
			in: `
			// this is my graph
							// and I do what I want to!

			graph {
		}

`,
			want: "// this is my graph\n// and I do what I want to!\ngraph {}",
		},
		"DocLineCommentStaysWithStatement": {
			in: `graph {
	/// keep this node
	A
}`,
			want: "graph {\n  /// keep this node\n  A;\n}",
		},
		"HashCommentIsCarriedVerbatim": {
			in: `graph {
	# legacy note
	A
}`,
			want: "graph {\n  # legacy note\n  A;\n}",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := ppconfig.Default()

			var gotFirst bytes.Buffer
			p := printer.New(strings.NewReader(test.in), &gotFirst, cfg, nil)
			err := p.Print()
			require.NoErrorf(t, err, "Print(%q)", test.in)

			if gotFirst.String() != test.want {
				t.Fatalf("\n\nin:\n%s\n\ngot:\n%s\n\n\nwant:\n%s\n", test.in, gotFirst.String(), test.want)
			}

			t.Logf("print again with the previous output as the input to ensure printing is idempotent")

			var gotSecond bytes.Buffer
			p = printer.New(strings.NewReader(gotFirst.String()), &gotSecond, cfg, nil)
			err = p.Print()
			require.NoErrorf(t, err, "Print(%q)", gotFirst.String())

			if gotSecond.String() != gotFirst.String() {
				t.Errorf("\n\nin:\n%s\n\ngot:\n%s\n\n\nwant:\n%s\n", gotFirst.String(), gotSecond.String(), gotFirst.String())
			}
		})
	}
}
