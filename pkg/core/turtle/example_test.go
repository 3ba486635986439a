package turtle_test

import (
	"fmt"

	"github.com/matzehuels/arbor/pkg/core/turtle"
)

func ExampleInterpret() {
	t, _ := turtle.Interpret("F[+F]F", 90, 1)
	for _, s := range t.Branches() {
		fmt.Printf("%s parent=%s depth=%d\n", s.ID, s.ParentID, s.Depth)
	}
	// Output:
	// root-0 parent=root depth=0
	// root-0-0 parent=root-0 depth=1
	// root-0-1 parent=root-0 depth=0
}
