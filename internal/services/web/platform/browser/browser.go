//go:build js && wasm

// Package browser binds the alert presenter to the live page DOM and the
// browser's asynchronous cookie store.
package browser

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/louisbranch/roomalerts/internal/services/web/platform/alerts"
)

// ErrNoCookieStore reports a browser without window.cookieStore.
var ErrNoCookieStore = errors.New("cookieStore is not available")

// Container appends headings to a DOM element.
type Container struct {
	document js.Value
	element  js.Value
}

var _ alerts.Container = (*Container)(nil)

// FindContainer resolves the element with the given id from the document.
func FindContainer(id string) (*Container, error) {
	document := js.Global().Get("document")
	if !document.Truthy() {
		return nil, errors.New("document is not available")
	}
	element := document.Call("getElementById", id)
	if element.IsNull() || element.IsUndefined() {
		return nil, fmt.Errorf("alert container %q not found", id)
	}
	return &Container{document: document, element: element}, nil
}

// AppendHeading appends a heading element whose textContent is text.
func (c *Container) AppendHeading(text string) {
	heading := c.document.Call("createElement", alerts.HeadingTag)
	heading.Set("textContent", text)
	c.element.Call("appendChild", heading)
}

// Clear removes every child of the element.
func (c *Container) Clear() {
	c.element.Call("replaceChildren")
}

// CookieStore wraps window.cookieStore.
type CookieStore struct {
	store js.Value
}

var _ alerts.CookieStore = (*CookieStore)(nil)

// NewCookieStore returns the page's cookie store.
func NewCookieStore() (*CookieStore, error) {
	store := js.Global().Get("cookieStore")
	if !store.Truthy() {
		return nil, ErrNoCookieStore
	}
	return &CookieStore{store: store}, nil
}

// Get awaits cookieStore.get(name).
func (s *CookieStore) Get(ctx context.Context, name string) (string, bool, error) {
	entry, err := await(ctx, s.store.Call("get", name))
	if err != nil {
		return "", false, fmt.Errorf("cookieStore.get %q: %w", name, err)
	}
	if entry.IsNull() || entry.IsUndefined() {
		return "", false, nil
	}
	return entry.Get("value").String(), true, nil
}

// Delete awaits cookieStore.delete(name).
func (s *CookieStore) Delete(ctx context.Context, name string) error {
	if _, err := await(ctx, s.store.Call("delete", name)); err != nil {
		return fmt.Errorf("cookieStore.delete %q: %w", name, err)
	}
	return nil
}

// OnReady runs fn on its own goroutine once the document has loaded.
func OnReady(fn func()) {
	document := js.Global().Get("document")
	if document.Get("readyState").String() != "loading" {
		go fn()
		return
	}
	var listener js.Func
	listener = js.FuncOf(func(js.Value, []js.Value) any {
		listener.Release()
		go fn()
		return nil
	})
	document.Call("addEventListener", "DOMContentLoaded", listener, map[string]any{"once": true})
}

type settled struct {
	value js.Value
	err   error
}

// await blocks until promise settles. It must not be called from a js.Func
// callback, since the callbacks that settle it run on the same event loop.
func await(ctx context.Context, promise js.Value) (js.Value, error) {
	done := make(chan settled, 1)
	onResolve := js.FuncOf(func(_ js.Value, args []js.Value) any {
		value := js.Undefined()
		if len(args) > 0 {
			value = args[0]
		}
		done <- settled{value: value}
		return nil
	})
	onReject := js.FuncOf(func(_ js.Value, args []js.Value) any {
		reason := "promise rejected"
		if len(args) > 0 {
			reason = args[0].Call("toString").String()
		}
		done <- settled{err: errors.New(reason)}
		return nil
	})
	promise.Call("then", onResolve, onReject)

	select {
	case <-ctx.Done():
		// The callbacks stay live so a late settlement has something to call.
		return js.Undefined(), ctx.Err()
	case result := <-done:
		onResolve.Release()
		onReject.Release()
		return result.value, result.err
	}
}
