// Package errors provides coded, actionable errors for the iterdiff tools.
//
// Every error code maps to a category, a short message and a detailed
// explanation:
//
//	err := errors.New("E141").
//	    WithSource("iterdiff.json").
//	    WithSuggestion("Run 'iterdiff init' to create one")
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// Output:
//	// ERROR E141: Configuration file not found
//	//
//	//   iterdiff.json
//	//
//	//   No iterdiff.json was found in the working directory.
//	//
//	//   Hint: Run 'iterdiff init' to create one
//
// Classify turns errors returned by the library packages into coded errors
// so the CLI and the server report them uniformly.
package errors
