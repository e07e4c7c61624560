/*
Package dsl provides a fluent Go builder for field catalogs.

It is the programmatic alternative to catalog files, useful for tests,
embedded forms and catalogs assembled at runtime.

Example usage:

	c, err := dsl.New().
		Ask("fullName").Prompt("What is your full name?").
		Ask("panNumber").Prompt("What is your PAN number?").
		Build()
	if err != nil {
		log.Fatal(err)
	}

	eng, _ := formchat.New("", formchat.WithCatalog(c))
*/
package dsl
