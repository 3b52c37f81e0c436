/*
Package authsdk provides a client SDK for the folio portfolio API.

# Overview

The package holds the request and response types shared by the server and
its clients, and a small HTTP client built on them. Unauthenticated
operations live on SDKClient; operations that need an access token live on
Session, which refreshes the token automatically.

	client := authsdk.NewSDKClient("https://folio.example.com")

	// Check service health
	health, err := client.GetReadiness(ctx)

	// Create an account and log in
	_, err = client.Register(ctx, authsdk.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: pw})
	session, err := client.AuthenticateWithPassword(ctx, "alice@example.com", pw)

	// Work with the caller's portfolio
	portfolio, err := session.GetPortfolio(ctx)
	project, err := session.CreateProject(ctx, authsdk.ProjectRequest{Title: "folio", Description: "This site"})

# Refresh Tokens

The server sets the refresh token as an HttpOnly cookie named refreshToken.
The SDK reads it from the login response and sends it in the JSON body of
POST /v1/auth/refresh. Refresh does not rotate the refresh token, so a
Session keeps the one it received at login until Logout or ChangePassword.

# Errors

Every non-2xx response is returned as an *APIError carrying the status
code, the error code from the body and any per-field details:

	_, err := client.Register(ctx, req)
	if authsdk.IsCode(err, authsdk.ErrorCodeValidation) {
		var apiErr *authsdk.APIError
		errors.As(err, &apiErr)
		for field, msg := range apiErr.Details {
			fmt.Println(field, msg)
		}
	}
*/
package authsdk
