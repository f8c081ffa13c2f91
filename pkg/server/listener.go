package server

import "net"

// Listener binds the address the HTTP server accepts connections on.
type Listener interface {
	Listen(network, address string) (net.Listener, error)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(network, address string) (net.Listener, error)

func (f ListenerFunc) Listen(network, address string) (net.Listener, error) {
	return f(network, address)
}

// NetListener binds with net.Listen.
var NetListener Listener = ListenerFunc(net.Listen)
