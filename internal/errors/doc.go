// Package errors provides structured, coded errors for canopy.
//
// Every error carries a code (e.g., "E003") that maps to a short message and
// a longer explanation in the registry, plus optional per-occurrence detail,
// a hint and a wrapped cause.
//
// # Error Categories
//
// Errors are organized into categories:
//   - render: advisory problems found while reconciling (unknown labels,
//     ambiguous siblings, merge mismatches)
//   - compose: middleware graph errors raised when a component is created
//   - mount: problems attaching a renderer to a document
//   - config, dev, snapshot, cli: tooling errors
//
// # Usage
//
//	err := errors.New(errors.ErrUnknownLabel).
//	    WithDetail(`label "menu" is not defined`).
//	    WithSuggestion(`did you mean "menus"?`)
//
//	fmt.Print(err.Format())
//	// Output:
//	// ERROR E001: Unknown registry label
//	//
//	//   label "menu" is not defined
//	//
//	//   Hint: did you mean "menus"?
//
// Suggest picks the closest candidate by Levenshtein distance for such hints.
package errors
