package buffer

// View is a borrowed byte range. The zero value is absent.
type View struct {
	data    []byte
	present bool
}

// ViewOf borrows b. A nil slice yields an absent view; a non-nil slice of
// length zero yields a present, empty view.
func ViewOf(b []byte) View {
	return View{data: b, present: b != nil}
}

// AbsentView returns the absent view.
func AbsentView() View {
	return View{}
}

// IsAbsent reports whether the view wraps no buffer at all.
func (v View) IsAbsent() bool {
	return !v.present
}

// Bytes returns the borrowed bytes. The slice aliases caller memory and must not
// be modified or retained past the current call.
func (v View) Bytes() []byte {
	return v.data
}

// Len returns the number of borrowed bytes.
func (v View) Len() int {
	return len(v.data)
}

// Clone copies the viewed bytes so they can outlive the call. An absent view
// clones to nil, an empty view to a non-nil empty slice.
func (v View) Clone() []byte {
	if !v.present {
		return nil
	}
	out := make([]byte, len(v.data))
	copy(out, v.data)
	return out
}
