package match

// OpKind classifies one position of a token alignment.
type OpKind int

const (
	// OpMatch means the spoken token equals the correct token.
	OpMatch OpKind = iota

	// OpSubstitution means the speaker said a different word in place of the
	// correct one.
	OpSubstitution

	// OpInsertion means the speaker said an extra word not present in the
	// correct line.
	OpInsertion

	// OpDeletion means the speaker omitted a word from the correct line.
	OpDeletion
)

// String returns the human-readable name of the op kind.
func (k OpKind) String() string {
	switch k {
	case OpMatch:
		return "match"
	case OpSubstitution:
		return "substitution"
	case OpInsertion:
		return "insertion"
	case OpDeletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// Op is one step of a token alignment. Spoken is set for match,
// substitution, and insertion ops; Correct is set for match, substitution,
// and deletion ops.
type Op struct {
	Kind    OpKind
	Spoken  string
	Correct string
}

// Align computes a minimum-edit-distance alignment between the spoken and
// correct token sequences using the Wagner–Fischer algorithm with unit cost
// for substitution, insertion, and deletion and zero cost for an exact token
// match.
//
// The returned ops follow the correct line's reading order, with insertions
// interleaved at the point they were spoken. The alignment is lossless:
// dropping insertion ops and reading the Correct field of the rest
// reconstructs the correct sequence; dropping deletion ops and reading
// Spoken reconstructs the spoken sequence.
//
// Backtracking prefers, in this order: match, substitution, insertion,
// deletion. The fixed priority makes the output deterministic for given
// inputs. O(m·n) time and space; lines are short so no banding is needed.
func Align(spoken, correct []string) []Op {
	m, n := len(spoken), len(correct)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
		dp[i][0] = i // deleting a spoken prefix (all insertions)
	}
	for j := 0; j <= n; j++ {
		dp[0][j] = j // supplying a correct prefix (all deletions)
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if spoken[i-1] == correct[j-1] {
				dp[i][j] = dp[i-1][j-1]
				continue
			}
			best := dp[i-1][j-1] // substitution
			if dp[i-1][j] < best {
				best = dp[i-1][j] // insertion (extra spoken word)
			}
			if dp[i][j-1] < best {
				best = dp[i][j-1] // deletion (omitted correct word)
			}
			dp[i][j] = 1 + best
		}
	}

	// Backtrack from dp[m][n] to dp[0][0], emitting ops in reverse.
	ops := make([]Op, 0, m+n)
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && spoken[i-1] == correct[j-1]:
			ops = append(ops, Op{Kind: OpMatch, Spoken: spoken[i-1], Correct: correct[j-1]})
			i--
			j--
		case i > 0 && j > 0 && dp[i][j] == dp[i-1][j-1]+1:
			ops = append(ops, Op{Kind: OpSubstitution, Spoken: spoken[i-1], Correct: correct[j-1]})
			i--
			j--
		case i > 0 && dp[i][j] == dp[i-1][j]+1:
			ops = append(ops, Op{Kind: OpInsertion, Spoken: spoken[i-1]})
			i--
		default:
			ops = append(ops, Op{Kind: OpDeletion, Correct: correct[j-1]})
			j--
		}
	}

	// Reverse into reading order.
	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}
	return ops
}
