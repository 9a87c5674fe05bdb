package runtime

// garbageCollect runs the hybrid refcount/mark-sweep collector, rooted at
// root (the Context's globals table):
//
//  1. Clear mark flags on all managed objects.
//  2. Move root into a working list.
//  3. While working is non-empty: pop its head, mark it, call its
//     forEachChild callback to discover owned references — newly
//     discovered unmarked objects join working, the popped object moves to
//     a marked list.
//  4. Sweep whatever remains on the manager's original list: it is
//     unreachable, so mark it invalid, force its refcount to 1 and release
//     it.
//  5. Splice the marked list back as the manager's live list.
func (m *ObjectManager) garbageCollect(root Object) {
	for n := m.head.next; n != &m.head; n = n.next {
		n.owner.header().flag = gcUnmarked
	}

	var working, marked node
	working.prev, working.next = &working, &working
	marked.prev, marked.next = &marked, &marked

	rh := root.header()
	rh.listNode.pickOut()
	rh.listNode.insertAfter(working.prev)

	for working.next != &working {
		n := working.next
		obj := n.owner
		h := obj.header()
		h.flag = gcMarked

		obj.forEachChild(func(child Object) {
			ch := child.header()
			if ch.flag&gcMarked == 0 {
				ch.flag = gcMarked
				ch.listNode.pickOut()
				ch.listNode.insertAfter(&working)
			}
		})

		n.pickOut()
		n.insertAfter(&marked)
	}

	m.sweep()
	m.adopt(&marked)
}

// adopt replaces m.head's contents with list's, leaving list empty.
func (m *ObjectManager) adopt(list *node) {
	if list.next == list {
		m.head.next = &m.head
		m.head.prev = &m.head
		return
	}
	first, last := list.next, list.prev
	m.head.next = first
	first.prev = &m.head
	m.head.prev = last
	last.next = &m.head
}

// sweep unlinks and invalidates every object still on the manager's
// original (unmarked) list — the unreachable set.
func (m *ObjectManager) sweep() {
	for m.head.next != &m.head {
		n := m.head.next
		obj := n.owner
		h := obj.header()

		h.flag |= gcInvalid
		h.refs = 1
		obj.release()
	}
}
