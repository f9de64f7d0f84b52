package dom

import "golang.org/x/net/html"

// MutationType tells which kind of change a record describes
type MutationType int

const (
	ChildList MutationType = iota
	Attributes
)

func (t MutationType) String() string {
	switch t {
	case ChildList:
		return "childList"
	case Attributes:
		return "attributes"
	}
	return "unknown"
}

// MutationRecord describes one change to the tree
type MutationRecord struct {
	Type          MutationType
	Target        *html.Node
	AddedNodes    []*html.Node
	RemovedNodes  []*html.Node
	AttributeName string
}

// MutationCallback receives a batch of records
type MutationCallback func(records []MutationRecord)

type observer struct {
	id int
	cb MutationCallback
}

// Observe registers cb for every future batch of records and returns a
// function that disconnects it
func (d *Document) Observe(cb MutationCallback) (disconnect func()) {
	d.nextID++
	id := d.nextID
	d.observers = append(d.observers, &observer{id: id, cb: cb})
	return func() {
		for i, o := range d.observers {
			if o.id == id {
				d.observers = append(d.observers[:i], d.observers[i+1:]...)
				break
			}
		}
		if len(d.observers) == 0 {
			d.pending = nil
		}
	}
}

// TakeRecords returns and clears the pending records without delivering them
func (d *Document) TakeRecords() []MutationRecord {
	records := d.pending
	d.pending = nil
	return records
}

// Flush delivers the pending batch to every observer. Records produced by the
// callbacks stay pending until the next Flush.
func (d *Document) Flush() {
	if len(d.pending) == 0 {
		return
	}
	records := d.TakeRecords()
	observers := make([]*observer, len(d.observers))
	copy(observers, d.observers)
	for _, o := range observers {
		o.cb(records)
	}
}

// Pending reports how many records wait for delivery
func (d *Document) Pending() int {
	return len(d.pending)
}

func (d *Document) record(r MutationRecord) {
	if len(d.observers) == 0 {
		return
	}
	d.pending = append(d.pending, r)
}

// HasAddedNodes reports whether at least one record inserted a node
func HasAddedNodes(records []MutationRecord) bool {
	for _, r := range records {
		if len(r.AddedNodes) > 0 {
			return true
		}
	}
	return false
}
