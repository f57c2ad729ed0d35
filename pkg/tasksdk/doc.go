// Package tasksdk is a small Go client for the TaskSetu identity and
// tenancy API, plus the JSON types the server itself speaks.
//
// Public endpoints hang off a Client:
//
//	c := tasksdk.NewClient("http://localhost:8080")
//	sess, _, err := c.Login(ctx, tasksdk.LoginRequest{Email: "a@acme.test", Password: "Abc12345"})
//
// Authenticated calls go through the returned Session:
//
//	res, err := sess.InviteUsers(ctx,
//		tasksdk.InviteSpec{Email: "b@acme.test", Role: "member"},
//		tasksdk.InviteSpec{Email: "c@acme.test", Roles: []string{"admin"}},
//	)
//	fmt.Println(res.SuccessCount, res.Errors)
//
// Non-2xx responses are returned as *APIError; use IsCode to branch on the
// error code:
//
//	if tasksdk.IsCode(err, tasksdk.ErrorCodeSeatLimitReached) { ... }
//
// Super admins address another tenant with Session.ForTenant.
package tasksdk
