/*
Package client is a small Go client for the broker's wire protocol: a
single TCP connection wrapped with the same pkg/wire framing, AEAD
encryption, and HMAC tagging the broker itself uses.

	c, err := client.NewClient("127.0.0.1:5000", secret)
	taskID, err := c.AddTask("build", 5, 300)
	task, ok, err := c.GetTask("worker-1")
	err = c.TaskCompleted(task.ID, "worker-1", nil)

A Client serializes calls behind a mutex: the wire protocol allows only
one request in flight per connection, so concurrent callers queue for
the same round trip rather than racing on the socket.
*/
package client
