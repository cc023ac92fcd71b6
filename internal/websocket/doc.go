// Package websocket pushes dataset notifications to browser clients.
//
// A Hub owns the connected clients and fans out JSON messages of the form
//
//	{"type":"dataset:loaded","data":{...},"trace_id":"...","timestamp":"..."}
//
// Handler upgrades HTTP requests and starts a read and a write pump per
// client. Clients that fall behind are disconnected instead of blocking
// the hub.
package websocket
