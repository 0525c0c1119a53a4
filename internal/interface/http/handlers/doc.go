// Package handlers holds the HTTP pieces that know nothing about exams:
// the composite health checker behind GET /health and the middleware
// installed on the router.
//
// Checks are reported under their registration name. The failure message
// lists failed checks in registration order:
//
//	checker := handlers.NewCompositeHealthChecker(version)
//	checker.AddCheck("store", handlers.NewPingCheck(store))
//	checker.AddCheck("redis", handlers.NewPingCheck(cache))
//
// Middleware values have the gorilla/mux shape and go straight to
// Router.Use.
package handlers
