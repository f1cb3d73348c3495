package motionpath

// Batch is a ChangeRecorder that collects the primitive edits of one
// interactive operation so they can be rolled back as a unit. Hosts with
// their own undo stacks will usually bring their own recorder; Batch is
// the standalone implementation used by the bundled curve backend and by
// tests.
type Batch struct {
	edits []batchEdit
}

type batchEditKind int

const (
	editKeyAdded batchEditKind = iota
	editKeyRemoved
	editValueChanged
	editTangentChanged
)

type batchEdit struct {
	kind    batchEditKind
	channel Channel
	time    float64
	value   float64
	old     float64
	side    TangentSide
	oldIn   TangentRepr
	oldOut  TangentRepr
}

// NewBatch returns an empty edit batch.
func NewBatch() *Batch { return &Batch{} }

// Len returns the number of recorded edits.
func (b *Batch) Len() int { return len(b.edits) }

// KeyAdded records a key insertion.
func (b *Batch) KeyAdded(c Channel, t, v float64) {
	b.edits = append(b.edits, batchEdit{kind: editKeyAdded, channel: c, time: t, value: v})
}

// KeyRemoved records a key deletion together with its tangents.
func (b *Batch) KeyRemoved(c Channel, t, v float64, in, out TangentRepr) {
	b.edits = append(b.edits, batchEdit{
		kind: editKeyRemoved, channel: c, time: t, value: v, oldIn: in, oldOut: out,
	})
}

// ValueChanged records a key value edit.
func (b *Batch) ValueChanged(c Channel, t, old, new float64) {
	b.edits = append(b.edits, batchEdit{
		kind: editValueChanged, channel: c, time: t, old: old, value: new,
	})
}

// TangentChanged records a tangent edit.
func (b *Batch) TangentChanged(c Channel, t float64, side TangentSide, old, new TangentRepr) {
	b.edits = append(b.edits, batchEdit{
		kind: editTangentChanged, channel: c, time: t, side: side, oldIn: old,
	})
}

// Undo rolls back the recorded edits in reverse order and empties the
// batch. Edits are replayed without a recorder, so undoing is not itself
// recorded.
func (b *Batch) Undo() {
	for i := len(b.edits) - 1; i >= 0; i-- {
		ed := b.edits[i]
		switch ed.kind {
		case editKeyAdded:
			if id, ok := ed.channel.FindKeyAt(ed.time); ok {
				ed.channel.RemoveKey(id)
			}
		case editKeyRemoved:
			id := ed.channel.AddKey(ed.time, ed.value)
			ed.channel.SetTangent(id, TangentIn, ed.oldIn)
			ed.channel.SetTangent(id, TangentOut, ed.oldOut)
		case editValueChanged:
			if id, ok := ed.channel.FindKeyAt(ed.time); ok {
				ed.channel.SetKeyValue(id, ed.old)
			}
		case editTangentChanged:
			if id, ok := ed.channel.FindKeyAt(ed.time); ok {
				ed.channel.SetTangent(id, ed.side, ed.oldIn)
			}
		}
	}
	b.edits = nil
}

// Drop discards the recorded edits without rolling anything back, marking
// the operation as committed.
func (b *Batch) Drop() {
	b.edits = nil
}
