// Package lsystem expands L-system grammars.
//
// An L-system rewrites every symbol of a working string in parallel, once
// per generation, using context-free production rules. Symbols without a
// rule are terminal and copy through unchanged, so grammars may freely
// carry markers that only the interpreter (or nothing) cares about.
//
//	rules := lsystem.Rules{'F': "F[+F]F"}
//	s, _ := lsystem.Expand("F", rules, 2)
//	// s == "F[+F]F[+F[+F]F]F[+F]F"
//
// # Growth
//
// Output length grows with the rules' branching factor raised to the
// iteration count. Expansion has no cycle detection and no implicit bound:
// callers bound the iteration count (see [errors.ValidateIterations]) or
// predict the result size with [Length] and use [ExpandBounded].
//
// Each pass rebuilds the working sequence as a rune slice sized exactly
// from the previous pass, so a pass costs time linear in its output.
package lsystem
