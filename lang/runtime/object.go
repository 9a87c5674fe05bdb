package runtime

// gcFlag tracks an object's mark-sweep state: unmarked, marked reachable
// during the current collection, or invalidated by a completed sweep.
type gcFlag uint8

const (
	gcUnmarked gcFlag = 0
	gcMarked   gcFlag = 1 << iota
	gcInvalid
)

// node is one link of the ObjectManager's intrusive doubly-linked object
// list; every heap object embeds one via gcHeader.
type node struct {
	prev, next *node
	owner      Object
}

func (n *node) pickOut() {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

func (n *node) insertAfter(at *node) {
	n.prev = at
	n.next = at.next
	at.next.prev = n
	at.next = n
}

// Object is the interface every heap-allocated runtime value (String,
// Array, Table, Function, Closure) implements: refcounting plus each
// variant's own GC traversal callback.
type Object interface {
	String() string
	Type() string

	addRef()
	release()
	refCount() uint32

	header() *gcHeader
	// forEachChild invokes visit on every Object this object directly holds a
	// reference to (table keys/values, array slots, closure locals, a
	// function's closure, a closure's parent). Strings have no children and
	// implement it as a no-op. Non-object Values (numbers, Null, CFunc) carry
	// nothing to visit and are simply skipped by each implementation.
	forEachChild(visit func(Object))
}

// gcHeader is embedded in every concrete Object implementation. It carries
// the refcount, GC flag and intrusive-list node; manager points back to the
// owning ObjectManager so release() can find the list to unlink from.
type gcHeader struct {
	manager  *ObjectManager
	listNode node
	refs     uint32
	flag     gcFlag
}

func (h *gcHeader) header() *gcHeader { return h }

func (h *gcHeader) addRef() {
	h.refs++
}

// release decrements the refcount and, when it reaches zero, unlinks the
// object from the manager's list. There is no explicit free step beyond
// the unlink: the object becomes garbage to Go's own collector the moment
// it is unreachable, invalid flag or not.
func (h *gcHeader) release() {
	if h.refs == 0 {
		panic("runtime: release of an object with refcount 0")
	}
	h.refs--
	if h.refs == 0 {
		h.listNode.pickOut()
	}
}

func (h *gcHeader) refCount() uint32 { return h.refs }

// ObjectManager owns the intrusive doubly-linked list of every object
// created against it and runs the mark-and-sweep collector.
type ObjectManager struct {
	head node
}

// NewObjectManager returns a manager with an empty object list.
func NewObjectManager() *ObjectManager {
	m := &ObjectManager{}
	m.head.prev = &m.head
	m.head.next = &m.head
	return m
}

// register inserts a newly constructed object into the manager's list at
// refcount 0; ownership transfers to the first retain.
func (m *ObjectManager) register(obj Object) {
	h := obj.header()
	h.manager = m
	h.listNode.owner = obj
	h.listNode.insertAfter(&m.head)
}

// Count returns the number of objects currently on the manager's live list.
// Intended for diagnostics and tests, not for anything in the hot path.
func (m *ObjectManager) Count() int {
	n := 0
	for cur := m.head.next; cur != &m.head; cur = cur.next {
		n++
	}
	return n
}
