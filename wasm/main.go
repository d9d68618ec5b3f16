//go:build js && wasm

package main

import (
	"errors"
	"fmt"
	"syscall/js"

	"github.com/coachwood/kdtree"
)

// Simple registry for Tree instances created from JS. Items are kept as
// plain strings for simplicity across the WASM boundary.
var (
	treeRegistry = map[int]*kdtree.Tree[float64, string]{}
	nextTreeID   = 1
)

func export(name string, fn func(this js.Value, args []js.Value) (any, error)) {
	js.Global().Set(name, js.FuncOf(func(this js.Value, args []js.Value) any {
		res, err := fn(this, args)
		if err != nil {
			return map[string]any{"ok": false, "error": err.Error()}
		}
		return map[string]any{"ok": true, "data": res}
	}))
}

func getFloatSlice(arg js.Value) ([]float64, error) {
	if arg.IsUndefined() || arg.IsNull() {
		return nil, errors.New("coords/query is undefined or null")
	}
	ln := arg.Length()
	res := make([]float64, ln)
	for i := 0; i < ln; i++ {
		res[i] = arg.Index(i).Float()
	}
	return res, nil
}

func lookupTree(id int) (*kdtree.Tree[float64, string], error) {
	t, ok := treeRegistry[id]
	if !ok {
		return nil, fmt.Errorf("unknown treeId %d", id)
	}
	return t, nil
}

func newTree(_ js.Value, args []js.Value) (any, error) {
	if len(args) < 1 {
		return nil, errors.New("newTree(dim) requires dim")
	}
	dim := args[0].Int()
	if dim <= 0 {
		return nil, kdtree.ErrZeroDim
	}
	t := kdtree.NewTree[float64, string](dim)
	id := nextTreeID
	nextTreeID++
	treeRegistry[id] = t
	return map[string]any{"treeId": id, "dim": dim}, nil
}

func treeLen(_ js.Value, args []js.Value) (any, error) {
	if len(args) < 1 {
		return nil, errors.New("len(treeId)")
	}
	t, err := lookupTree(args[0].Int())
	if err != nil {
		return nil, err
	}
	return t.Size(), nil
}

func insert(_ js.Value, args []js.Value) (any, error) {
	// insert(treeId, {coords: number[], value: string})
	if len(args) < 2 {
		return nil, errors.New("insert(treeId, point)")
	}
	t, err := lookupTree(args[0].Int())
	if err != nil {
		return nil, err
	}
	pt := args[1]
	coords, err := getFloatSlice(pt.Get("coords"))
	if err != nil {
		return nil, err
	}
	val := pt.Get("value").String()
	if err := t.Add(coords, val); err != nil {
		return nil, err
	}
	return true, nil
}

func removePoint(_ js.Value, args []js.Value) (any, error) {
	// remove(treeId, coords:number[], value:string)
	if len(args) < 3 {
		return nil, errors.New("remove(treeId, coords, value)")
	}
	t, err := lookupTree(args[0].Int())
	if err != nil {
		return nil, err
	}
	coords, err := getFloatSlice(args[1])
	if err != nil {
		return nil, err
	}
	return t.Remove(coords, args[2].String()), nil
}

func nearest(_ js.Value, args []js.Value) (any, error) {
	// nearest(treeId, query:number[]) -> {value, dist}
	if len(args) < 2 {
		return nil, errors.New("nearest(treeId, query)")
	}
	t, err := lookupTree(args[0].Int())
	if err != nil {
		return nil, err
	}
	query, err := getFloatSlice(args[1])
	if err != nil {
		return nil, err
	}
	d, v := t.NearestOne(kdtree.SquaredEuclidean[float64]{}, query)
	return map[string]any{"value": v, "dist": d}, nil
}

func kNearest(_ js.Value, args []js.Value) (any, error) {
	// kNearest(treeId, query:number[], n:int) -> {values:[...], dists:[...]}
	if len(args) < 3 {
		return nil, errors.New("kNearest(treeId, query, n)")
	}
	t, err := lookupTree(args[0].Int())
	if err != nil {
		return nil, err
	}
	query, err := getFloatSlice(args[1])
	if err != nil {
		return nil, err
	}
	n := args[2].Int()
	res := t.NearestN(kdtree.SquaredEuclidean[float64]{}, query, n, func(a, b string) bool { return a < b })
	values := make([]any, len(res))
	dists := make([]any, len(res))
	for i, r := range res {
		values[i] = r.Item
		dists[i] = r.Dist
	}
	return map[string]any{"values": values, "dists": dists}, nil
}

func within(_ js.Value, args []js.Value) (any, error) {
	// within(treeId, query:number[], radius:number) -> {values:[...], dists:[...]}
	if len(args) < 3 {
		return nil, errors.New("within(treeId, query, radius)")
	}
	t, err := lookupTree(args[0].Int())
	if err != nil {
		return nil, err
	}
	query, err := getFloatSlice(args[1])
	if err != nil {
		return nil, err
	}
	r := args[2].Float()
	res := t.Within(kdtree.SquaredEuclidean[float64]{}, query, r)
	values := make([]any, len(res))
	dists := make([]any, len(res))
	for i, rr := range res {
		values[i] = rr.Item
		dists[i] = rr.Dist
	}
	return map[string]any{"values": values, "dists": dists}, nil
}

func getStats(_ js.Value, args []js.Value) (any, error) {
	// getStats(treeId) -> stats snapshot
	if len(args) < 1 {
		return nil, errors.New("getStats(treeId)")
	}
	t, err := lookupTree(args[0].Int())
	if err != nil {
		return nil, err
	}
	snap := t.Stats().Snapshot()
	return map[string]any{
		"queryCount":      snap.QueryCount,
		"insertCount":     snap.InsertCount,
		"removeCount":     snap.RemoveCount,
		"lastQueryTimeNs": snap.LastQueryTimeNs,
		"minQueryTimeNs":  snap.MinQueryTimeNs,
		"maxQueryTimeNs":  snap.MaxQueryTimeNs,
		"lastQueryAt":     snap.LastQueryAt.UnixMilli(),
		"createdAt":       snap.CreatedAt.UnixMilli(),
	}, nil
}

func getTopItems(_ js.Value, args []js.Value) (any, error) {
	// getTopItems(treeId, n) -> array of {item, selectionCount, avgDistance}
	if len(args) < 2 {
		return nil, errors.New("getTopItems(treeId, n)")
	}
	t, err := lookupTree(args[0].Int())
	if err != nil {
		return nil, err
	}
	n := args[1].Int()
	stats := t.Selection().Top(n)
	out := make([]any, len(stats))
	for i, s := range stats {
		out[i] = map[string]any{
			"item":           s.Item,
			"selectionCount": s.SelectionCount,
			"avgDistance":    s.AvgDistance,
			"lastSelectedAt": s.LastSelectedAt.UnixMilli(),
		}
	}
	return out, nil
}

func resetStats(_ js.Value, args []js.Value) (any, error) {
	if len(args) < 1 {
		return nil, errors.New("resetStats(treeId)")
	}
	t, err := lookupTree(args[0].Int())
	if err != nil {
		return nil, err
	}
	t.Stats().Reset()
	t.Selection().Reset()
	return true, nil
}

func main() {
	export("kdNewTree", newTree)
	export("kdTreeLen", treeLen)
	export("kdInsert", insert)
	export("kdRemove", removePoint)
	export("kdNearest", nearest)
	export("kdKNearest", kNearest)
	export("kdWithin", within)
	export("kdGetStats", getStats)
	export("kdGetTopItems", getTopItems)
	export("kdResetStats", resetStats)

	select {}
}
