package graph_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/arbor/pkg/core/turtle"
	"github.com/matzehuels/arbor/pkg/graph"
)

func ExampleWriteTree() {
	t, _ := turtle.Interpret("F", 22.5, 1)
	_ = graph.WriteTree(t, os.Stdout)
	// Output:
	// {
	//   "id": "root",
	//   "start": {
	//     "x": 0,
	//     "y": 0,
	//     "z": 0
	//   },
	//   "end": {
	//     "x": 0,
	//     "y": 0,
	//     "z": 0
	//   },
	//   "depth": -1,
	//   "children": [
	//     {
	//       "id": "root-0",
	//       "parentId": "root",
	//       "start": {
	//         "x": 0,
	//         "y": 0,
	//         "z": 0
	//       },
	//       "end": {
	//         "x": 0,
	//         "y": 1,
	//         "z": 0
	//       },
	//       "depth": 0,
	//       "children": []
	//     }
	//   ]
	// }
}

func ExampleReadTree() {
	doc := `{"id":"root","children":[
		{"id":"root-0","end":{"y":1},"children":[
			{"id":"root-0-0","start":{"y":1},"end":{"x":-1,"y":1},"depth":1}
		]}
	]}`
	t, err := graph.ReadTree(strings.NewReader(doc))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, s := range t.Branches() {
		fmt.Println(s.ID, "parent", s.ParentID, "depth", s.Depth)
	}
	// Output:
	// root-0 parent root depth 0
	// root-0-0 parent root-0 depth 1
}
