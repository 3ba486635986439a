// Package graph provides the serialization format for branch trees.
//
// This package defines the wire format used for JSON files, API responses,
// cache entries and MongoDB documents. It sits at the boundary between the
// internal arena representation (pkg/core/tree.Tree) and external formats.
//
// # Format
//
// A tree serializes as its root [Branch] with children nested in creation
// order:
//
//	{
//	  "id": "root",
//	  "start": {"x": 0, "y": 0, "z": 0},
//	  "end":   {"x": 0, "y": 0, "z": 0},
//	  "depth": -1,
//	  "children": [
//	    {
//	      "id": "root-0",
//	      "parentId": "root",
//	      "start": {"x": 0, "y": 0, "z": 0},
//	      "end":   {"x": 0, "y": 1, "z": 0},
//	      "depth": 0,
//	      "children": []
//	    }
//	  ]
//	}
//
// The root has no parentId. Every other branch carries its parent's id, so a
// flattened list of branches can be reassembled without the nesting.
//
// # Operations
//
//	data, _ := graph.MarshalTree(t)        // Tree -> []byte
//	graph.WriteTreeFile(t, "tree.json")    // Tree -> file
//	t, _ := graph.ReadTreeFile("tree.json") // file -> Tree
//	b := graph.FromTree(t)                 // Tree -> *Branch
//	t, _ := graph.ToTree(b)                // *Branch -> Tree
//
// Conversions are iterative, so deep trees never exhaust the goroutine
// stack. [ToTree] rejects nesting deeper than [MaxDecodeDepth].
package graph
