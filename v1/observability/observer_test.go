package observability

import "testing"

func TestMultiSkipsNilAndFansOut(t *testing.T) {
	var a, b []string
	obsA := ObserverFunc(func(ctx OperationContext) { a = append(a, ctx.Operation) })
	obsB := ObserverFunc(func(ctx OperationContext) { b = append(b, ctx.Operation) })

	m := Multi(obsA, nil, obsB)
	m.ObserveOperation(OperationContext{Component: "mongodb", Operation: "insert"})

	if len(a) != 1 || a[0] != "insert" {
		t.Fatalf("first observer got %v", a)
	}
	if len(b) != 1 || b[0] != "insert" {
		t.Fatalf("second observer got %v", b)
	}
}
