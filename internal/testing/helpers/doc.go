// Package helpers wires the API for end-to-end tests and provides request
// builders and assertions.
//
// # Application Harness
//
//	app := helpers.NewApp(t, tdb.Store)
//	resp := app.Serve(helpers.NewRequest(t, "POST", "/api/quiz/submit-quiz").
//	    WithBody(body).WithCSRF(app.Token(t)).Build())
//
//	c := app.Client(t) // pkg/client against app.Server
//
// # Assertion Helpers
//
//	helpers.AssertStatus(t, resp, http.StatusCreated)
//	helpers.AssertValidationError(t, resp, "email")
//	helpers.DecodeData(t, resp, &result)
package helpers
