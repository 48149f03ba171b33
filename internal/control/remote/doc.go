// Package remote exposes a parameter store over a websocket.
//
// Clients connect to /ws and exchange JSON messages:
//
//	-> {"type":"set","id":"cutoff","value":800}
//	-> {"type":"set_normalized","id":"resonance","value":0.5}
//	-> {"type":"reset","id":"cutoff"}    (empty id resets everything)
//	-> {"type":"get"}
//	<- {"type":"state","params":{"cutoff":800,"resonance":5.5}}
//	<- {"type":"error","error":"..."}
//
// Every accepted change is broadcast to all connected clients as a state
// message; get answers only the asking client. GET /state returns the same
// snapshot as plain JSON.
package remote
