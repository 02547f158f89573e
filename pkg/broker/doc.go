/*
Package broker is the broker's connection front end: it owns the
net.Listener, spawns one goroutine per client connection, and runs the
per-connection state machine for the wire protocol: read a frame,
decrypt and verify it through pkg/wire, dispatch the verified request
against pkg/queue and pkg/registry, write back a reply.

Server.Start binds the listener and starts accepting; Server.Shutdown
stops the listener, cancels the pkg/reaper sweeps, and waits for
in-flight handlers up to a caller-supplied grace period.
*/
package broker
