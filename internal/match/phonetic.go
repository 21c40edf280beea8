package match

import "github.com/antzucaro/matchr"

// phoneticEqual reports whether two tokens share a Double Metaphone code.
// Tokens that encode to no code at all (too short, no consonants) are never
// considered phonetically equal unless they are identical strings.
func phoneticEqual(a, b string) bool {
	if a == b {
		return true
	}
	ap, as := matchr.DoubleMetaphone(a)
	bp, bs := matchr.DoubleMetaphone(b)
	if ap == "" && as == "" {
		return false
	}
	for _, ca := range []string{ap, as} {
		if ca == "" {
			continue
		}
		if ca == bp || (bs != "" && ca == bs) {
			return true
		}
	}
	return false
}

// promotePhoneticMatches returns a copy of ops where substitutions between
// phonetically equivalent tokens are promoted to matches. The op order and
// both-side reconstruction properties are preserved.
func promotePhoneticMatches(ops []Op) []Op {
	out := make([]Op, len(ops))
	copy(out, ops)
	for i, op := range out {
		if op.Kind == OpSubstitution && phoneticEqual(op.Spoken, op.Correct) {
			out[i].Kind = OpMatch
		}
	}
	return out
}
