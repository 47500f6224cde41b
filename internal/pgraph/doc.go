// Package pgraph implements the process graph document model.
//
// A process graph is a JSON object mapping node identifiers to node bodies.
// Each body names a process, carries an argument object, and may be flagged as
// the graph's single result node:
//
//	{
//	  "sub": {
//	    "process_id": "subtract",
//	    "arguments": {"data": [{"from_argument": "nir"}, {"from_argument": "red"}]}
//	  },
//	  "evi": {
//	    "process_id": "product",
//	    "arguments": {"data": [2.5, {"from_node": "sub"}]},
//	    "result": true
//	  }
//	}
//
// Argument values are classified once, at decode time, into the tagged
// Argument variant: literals, references to sibling node outputs
// ({"from_node": ...}), and references to parameters of the enclosing
// invocation ({"from_argument": ...}). Arrays and objects are classified
// recursively, so downstream components never re-inspect raw JSON shapes.
//
// Decoding and validation accumulate every error they find instead of
// stopping at the first one; submitters iterate on graphs interactively and
// want complete feedback in a single round trip.
package pgraph
