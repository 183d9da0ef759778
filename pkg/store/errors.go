package store

import "errors"

// NetworkErrorTitle is the toast shown when any request fails.
const NetworkErrorTitle = "network request failed"

// ErrRequestFailed wraps every transport, status, or decode failure returned from a Task.
var ErrRequestFailed = errors.New("request failed")

// ErrClosed is returned by tasks dispatched after the store was closed.
var ErrClosed = errors.New("store is closed")
