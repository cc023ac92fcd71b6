// Package app assembles the epicli web service: it resolves paths, sets up
// logging and telemetry, creates the dataset service and websocket hub, and
// mounts the HTTP routes.
//
// # Initialization Flow
//
//	1. Resolve configured directories and create the export directory
//	2. Initialize logging and OpenTelemetry
//	3. Start the websocket hub and build the dataset service around it
//	4. Mount middleware and routes on a chi router
//	5. Optionally preload a data file
//
// # Usage
//
//	cfg, err := config.Load()
//	...
//	a, err := app.New(cfg, app.Options{Preload: "cases.csv"})
//	...
//	if err := a.Run(ctx); err != nil {
//	    ...
//	}
//
// Run returns when ctx is cancelled or on SIGINT/SIGTERM. Shutdown drains
// HTTP requests, stops the hub and flushes telemetry. The package never
// calls os.Exit.
package app
