package money

import (
	"fmt"
	"math/bits"
	"sort"
)

// Recipient is one party of a proportional distribution.
// Key breaks remainder ties (ascending) and must be unique within a call.
type Recipient struct {
	Key    string
	Weight int64
}

// Distribute divides total among recipients in proportion to their weights
// using largest-remainder rounding: every recipient first gets
// floor(total*weight/sum), then the cents still missing are handed out one at
// a time to the largest fractional remainders, ties going to the smallest Key.
//
// The returned slice is parallel to recipients and always sums to total.
func Distribute(total Money, recipients []Recipient) ([]Money, error) {
	if total < 0 {
		return nil, fmt.Errorf("distribute %d: %w", total, ErrNegativeAmount)
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	var weightSum uint64
	for _, r := range recipients {
		if r.Weight < 0 {
			return nil, fmt.Errorf("weight for %q: %w", r.Key, ErrNegativeAmount)
		}
		var carry uint64
		weightSum, carry = bits.Add64(weightSum, uint64(r.Weight), 0)
		if carry != 0 {
			return nil, fmt.Errorf("weights overflow")
		}
	}

	shares := make([]Money, len(recipients))
	if weightSum == 0 {
		if total != 0 {
			return nil, ErrZeroWeight
		}
		return shares, nil
	}

	remainders := make([]uint64, len(recipients))
	var allocated Money
	for i, r := range recipients {
		// total*weight fits in 128 bits and the quotient is at most total.
		hi, lo := bits.Mul64(uint64(total), uint64(r.Weight))
		q, rem := bits.Div64(hi, lo, weightSum)
		shares[i] = Money(q)
		remainders[i] = rem
		allocated += Money(q)
	}

	shortfall := int64(total - allocated)
	if shortfall == 0 {
		return shares, nil
	}

	order := make([]int, len(recipients))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if remainders[ia] != remainders[ib] {
			return remainders[ia] > remainders[ib]
		}
		return recipients[ia].Key < recipients[ib].Key
	})

	// shortfall < len(recipients) because each remainder is below one cent.
	for k := int64(0); k < shortfall; k++ {
		shares[order[k]]++
	}
	return shares, nil
}

// DistributeSigned is Distribute for totals of either sign: a negative total
// (a discount) is spread by magnitude and then negated.
func DistributeSigned(total Money, recipients []Recipient) ([]Money, error) {
	if total >= 0 {
		return Distribute(total, recipients)
	}
	shares, err := Distribute(-total, recipients)
	if err != nil {
		return nil, err
	}
	for i := range shares {
		shares[i] = -shares[i]
	}
	return shares, nil
}

// Split divides total equally among keys. Each share is either
// floor(total/len(keys)) or one cent more.
func Split(total Money, keys []string) ([]Money, error) {
	recipients := make([]Recipient, len(keys))
	for i, k := range keys {
		recipients[i] = Recipient{Key: k, Weight: 1}
	}
	return Distribute(total, recipients)
}
