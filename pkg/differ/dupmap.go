package differ

// dupList is the head and tail of a sublist of records sharing one
// tracking key. The links themselves live in the records.
type dupList struct {
	head, tail handle
}

// dupMap maps a normalized tracking key to the records carrying it. When
// several items share a key, lookups consume them in list order so that
// identical-looking items keep their relative positions.
type dupMap struct {
	arena *arena
	lists map[any]dupList
}

func newDupMap(a *arena) *dupMap {
	return &dupMap{arena: a, lists: make(map[any]dupList)}
}

// put appends h to the sublist of its key.
func (m *dupMap) put(h handle) {
	r := m.arena.at(h)
	l, ok := m.lists[r.key]
	if !ok {
		r.prevDup = nilHandle
		r.nextDup = nilHandle
		m.lists[r.key] = dupList{head: h, tail: h}
		return
	}
	m.arena.at(l.tail).nextDup = h
	r.prevDup = l.tail
	r.nextDup = nilHandle
	l.tail = h
	m.lists[r.key] = l
}

// get returns the first record with key whose current index is at or after
// atOrAfter. With atOrAfter == Absent any record matches.
func (m *dupMap) get(key any, atOrAfter int) handle {
	l, ok := m.lists[key]
	if !ok {
		return nilHandle
	}
	for h := l.head; h != nilHandle; h = m.arena.at(h).nextDup {
		if atOrAfter == Absent || atOrAfter <= m.arena.at(h).currentIndex {
			return h
		}
	}
	return nilHandle
}

// remove unlinks h from its key's sublist and reports whether the sublist
// became empty, in which case the key is dropped.
func (m *dupMap) remove(h handle) bool {
	r := m.arena.at(h)
	l, ok := m.lists[r.key]
	if !ok {
		return true
	}
	prev, next := r.prevDup, r.nextDup
	if prev == nilHandle {
		l.head = next
	} else {
		m.arena.at(prev).nextDup = next
	}
	if next == nilHandle {
		l.tail = prev
	} else {
		m.arena.at(next).prevDup = prev
	}
	r.prevDup = nilHandle
	r.nextDup = nilHandle
	if l.head == nilHandle {
		delete(m.lists, r.key)
		return true
	}
	m.lists[r.key] = l
	return false
}

func (m *dupMap) empty() bool {
	return len(m.lists) == 0
}

func (m *dupMap) clear() {
	clear(m.lists)
}
