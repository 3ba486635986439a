// Package species holds the catalogue of tree species and their L-system
// grammars.
//
// A [Species] pairs a botanical identity with an axiom, a rule set and the
// default turtle angle and step that make the grammar look like that tree.
// Catalogues implement [Catalog]:
//
//   - [TOMLCatalog] reads a TOML file; [Default] returns the catalogue
//     compiled into the binary.
//   - [MongoCatalog] reads the "species" collection of a MongoDB database
//     and can be seeded from any other catalogue.
//
// Catalogues keep their listing order. The first species of a listing is
// the one clients pick when the user has not chosen yet.
//
// # Parameter bounds
//
// Interactive clients clamp growth parameters to the ranges below. The core
// packages accept any finite value; these bounds are enforced by sessions
// and the pipeline.
//
//	iterations  1 .. 7     (default 4)
//	angle       10 .. 45   (default 22.5, or the species default)
//	step        0.5 .. 2   (default 1, or the species default)
//	thickness   0.5 .. 2.5 (default 1)
package species
