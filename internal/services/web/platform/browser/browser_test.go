//go:build js && wasm

package browser

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"syscall/js"
	"testing"
	"time"

	"github.com/louisbranch/roomalerts/internal/services/web/platform/alerts"
)

// Tests replace globals on the shared JS runtime, so none of them run in
// parallel.

type fakePage struct {
	children js.Value
	listener js.Value
	funcs    []js.Func
}

func (p *fakePage) bind(fn func(args []js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any { return fn(args) })
	p.funcs = append(p.funcs, f)
	return f
}

func (p *fakePage) headings() []string {
	var out []string
	for i := 0; i < p.children.Length(); i++ {
		child := p.children.Index(i)
		if child.Get("tagName").String() != alerts.HeadingTag {
			continue
		}
		out = append(out, child.Get("textContent").String())
	}
	return out
}

func installPage(t *testing.T, readyState string) *fakePage {
	t.Helper()
	page := &fakePage{children: js.Global().Get("Array").New(), listener: js.Undefined()}

	element := js.Global().Get("Object").New()
	element.Set("appendChild", page.bind(func(args []js.Value) any {
		page.children.Call("push", args[0])
		return args[0]
	}))
	element.Set("replaceChildren", page.bind(func([]js.Value) any {
		page.children.Set("length", 0)
		return nil
	}))

	document := js.Global().Get("Object").New()
	document.Set("readyState", readyState)
	document.Set("getElementById", page.bind(func(args []js.Value) any {
		if args[0].String() == alerts.ContainerID {
			return element
		}
		return js.Null()
	}))
	document.Set("createElement", page.bind(func(args []js.Value) any {
		el := js.Global().Get("Object").New()
		el.Set("tagName", args[0])
		return el
	}))
	document.Set("addEventListener", page.bind(func(args []js.Value) any {
		if args[0].String() == "DOMContentLoaded" {
			page.listener = args[1]
		}
		return nil
	}))

	js.Global().Set("document", document)
	t.Cleanup(func() {
		js.Global().Delete("document")
		for _, f := range page.funcs {
			f.Release()
		}
	})
	return page
}

type fakeCookies struct {
	values    map[string]string
	deleted   []string
	deleteErr string
	funcs     []js.Func
}

func installCookieStore(t *testing.T, values map[string]string) *fakeCookies {
	t.Helper()
	cookies := &fakeCookies{values: values}
	promise := js.Global().Get("Promise")

	get := js.FuncOf(func(_ js.Value, args []js.Value) any {
		name := args[0].String()
		value, ok := cookies.values[name]
		if !ok {
			return promise.Call("resolve", js.Null())
		}
		return promise.Call("resolve", js.ValueOf(map[string]any{"name": name, "value": value}))
	})
	del := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if cookies.deleteErr != "" {
			return promise.Call("reject", js.Global().Get("Error").New(cookies.deleteErr))
		}
		name := args[0].String()
		delete(cookies.values, name)
		cookies.deleted = append(cookies.deleted, name)
		return promise.Call("resolve", js.Undefined())
	})
	cookies.funcs = []js.Func{get, del}

	store := js.Global().Get("Object").New()
	store.Set("get", get)
	store.Set("delete", del)
	js.Global().Set("cookieStore", store)
	t.Cleanup(func() {
		js.Global().Delete("cookieStore")
		for _, f := range cookies.funcs {
			f.Release()
		}
	})
	return cookies
}

func TestAwaitReturnsResolvedValue(t *testing.T) {
	value, err := await(context.Background(), js.Global().Get("Promise").Call("resolve", "ready"))
	if err != nil {
		t.Fatalf("await() error = %v", err)
	}
	if value.String() != "ready" {
		t.Fatalf("await() = %q, want ready", value.String())
	}
}

func TestAwaitReturnsRejectionReason(t *testing.T) {
	rejected := js.Global().Get("Promise").Call("reject", js.Global().Get("Error").New("quota exceeded"))

	_, err := await(context.Background(), rejected)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("await() error = %v, want rejection reason", err)
	}
}

func TestAwaitHonorsContext(t *testing.T) {
	executor := js.FuncOf(func(js.Value, []js.Value) any { return nil })
	defer executor.Release()
	pending := js.Global().Get("Promise").New(executor)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := await(ctx, pending); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("await() error = %v, want deadline exceeded", err)
	}
}

func TestFindContainer(t *testing.T) {
	installPage(t, "complete")

	if _, err := FindContainer(alerts.ContainerID); err != nil {
		t.Fatalf("FindContainer() error = %v", err)
	}
	if _, err := FindContainer("missing"); err == nil {
		t.Fatalf("FindContainer(missing) error = nil, want error")
	}
}

func TestContainerAppendsTextHeadingsAndClears(t *testing.T) {
	page := installPage(t, "complete")
	container, err := FindContainer(alerts.ContainerID)
	if err != nil {
		t.Fatalf("FindContainer() error = %v", err)
	}

	container.AppendHeading("A")
	container.AppendHeading("<b>B</b>")

	if want := []string{"A", "<b>B</b>"}; !reflect.DeepEqual(page.headings(), want) {
		t.Fatalf("headings = %v, want %v", page.headings(), want)
	}
	container.Clear()
	if got := page.children.Length(); got != 0 {
		t.Fatalf("children after Clear = %d, want 0", got)
	}
}

func TestNewCookieStoreRequiresCookieStore(t *testing.T) {
	js.Global().Delete("cookieStore")
	if _, err := NewCookieStore(); !errors.Is(err, ErrNoCookieStore) {
		t.Fatalf("NewCookieStore() error = %v, want ErrNoCookieStore", err)
	}
}

func TestCookieStoreGetAndDelete(t *testing.T) {
	cookies := installCookieStore(t, map[string]string{"exc": `"[\"A\"]"`})
	store, err := NewCookieStore()
	if err != nil {
		t.Fatalf("NewCookieStore() error = %v", err)
	}
	ctx := context.Background()

	value, ok, err := store.Get(ctx, "exc")
	if err != nil || !ok || value != `"[\"A\"]"` {
		t.Fatalf("Get() = %q, %v, %v", value, ok, err)
	}
	if _, ok, err := store.Get(ctx, "other"); ok || err != nil {
		t.Fatalf("Get(other) ok = %v err = %v, want false, nil", ok, err)
	}
	if err := store.Delete(ctx, "exc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if want := []string{"exc"}; !reflect.DeepEqual(cookies.deleted, want) {
		t.Fatalf("deleted = %v, want %v", cookies.deleted, want)
	}

	cookies.deleteErr = "blocked"
	if err := store.Delete(ctx, "exc"); err == nil || !strings.Contains(err.Error(), "blocked") {
		t.Fatalf("Delete() error = %v, want rejection", err)
	}
}

func TestPresenterRendersFromCookieStore(t *testing.T) {
	page := installPage(t, "complete")
	value, err := alerts.Encode([]string{"A", "B"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	cookies := installCookieStore(t, map[string]string{alerts.CookieName: value})

	container, err := FindContainer(alerts.ContainerID)
	if err != nil {
		t.Fatalf("FindContainer() error = %v", err)
	}
	store, err := NewCookieStore()
	if err != nil {
		t.Fatalf("NewCookieStore() error = %v", err)
	}
	presenter, err := alerts.NewPresenter(container, store)
	if err != nil {
		t.Fatalf("NewPresenter() error = %v", err)
	}

	result := presenter.ShowAlerts(context.Background())

	if result.Outcome != alerts.OutcomeRendered || result.Rendered != 2 || !result.Deleted {
		t.Fatalf("result = %+v, want two rendered and deleted", result)
	}
	if want := []string{"A", "B"}; !reflect.DeepEqual(page.headings(), want) {
		t.Fatalf("headings = %v, want %v", page.headings(), want)
	}
	if _, ok := cookies.values[alerts.CookieName]; ok {
		t.Fatalf("cookie still present after ShowAlerts")
	}
}

func TestOnReadyRunsImmediatelyWhenLoaded(t *testing.T) {
	installPage(t, "interactive")

	ran := make(chan struct{})
	OnReady(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("OnReady callback did not run")
	}
}

func TestOnReadyWaitsForDOMContentLoaded(t *testing.T) {
	page := installPage(t, "loading")

	ran := make(chan struct{})
	OnReady(func() { close(ran) })

	select {
	case <-ran:
		t.Fatalf("OnReady callback ran before DOMContentLoaded")
	case <-time.After(20 * time.Millisecond):
	}
	if page.listener.Type() != js.TypeFunction {
		t.Fatalf("DOMContentLoaded listener not registered")
	}
	page.listener.Invoke()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("OnReady callback did not run after DOMContentLoaded")
	}
}
