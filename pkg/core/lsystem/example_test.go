package lsystem_test

import (
	"fmt"

	"github.com/matzehuels/arbor/pkg/core/lsystem"
)

func ExampleExpand() {
	rules := lsystem.Rules{'F': "F[+F]F"}
	for n := 0; n <= 2; n++ {
		s, _ := lsystem.Expand("F", rules, n)
		fmt.Println(s)
	}
	// Output:
	// F
	// F[+F]F
	// F[+F]F[+F[+F]F]F[+F]F
}

func ExampleLength() {
	rules := lsystem.Rules{'X': "F+[[X]-X]-F[-FX]+X", 'F': "FF"}
	n, _ := lsystem.Length("X", rules, 6)
	fmt.Println(n > 10000)
	// Output:
	// true
}
