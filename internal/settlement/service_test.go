package settlement

import (
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fkhayef/receiptsplit/internal/apperr"
	"github.com/fkhayef/receiptsplit/internal/group"
	"github.com/fkhayef/receiptsplit/internal/parser"
	"github.com/fkhayef/receiptsplit/internal/receipt"
	"github.com/fkhayef/receiptsplit/internal/receipt/split"
)

func expectSettled(balances []Balance, txs []Transaction) {
	Expect(len(txs)).To(BeNumerically("<=", max(len(balances)-1, 0)))
	for _, tx := range txs {
		Expect(tx.Amount).To(BeNumerically(">", 0))
		Expect(tx.Payer).NotTo(Equal(tx.Receiver))
	}
	for _, b := range Apply(balances, txs) {
		Expect(b.Amount).To(BeNumerically("~", 0, 1e-6))
	}
}

var _ = Describe("Aggregate", func() {
	var (
		roster   group.Roster
		builder  *receipt.Service
		receipts []*receipt.Receipt
	)

	build := func(desc receipt.Descriptor) *receipt.Receipt {
		rcpt, err := builder.Build(roster, desc)
		Expect(err).NotTo(HaveOccurred())
		return rcpt
	}

	BeforeEach(func() {
		roster = mustRoster("A", "B", "C")
		builder = receipt.NewService(split.NewSplitStrategyFactory())
		receipts = nil
	})

	When("one receipt is split evenly", func() {
		BeforeEach(func() {
			receipts = append(receipts, build(receipt.Descriptor{
				Name: "Dinner", Payer: 0, Subtotal: 100, Total: 110,
				Items: []receipt.ItemDescriptor{{Name: "dinner", Price: 100}},
			}))
		})

		It("should credit the payer and debit everyone's share", func() {
			balances, err := Aggregate(roster, receipts)
			Expect(err).NotTo(HaveOccurred())
			Expect(balances[0].Amount).To(BeNumerically("~", -73.3333, 1e-4))
			Expect(balances[1].Amount).To(BeNumerically("~", 36.6667, 1e-4))
			Expect(balances[2].Amount).To(BeNumerically("~", 36.6667, 1e-4))
			Expect(balances[1].Participant.Name).To(Equal("B"))
		})
	})

	When("several receipts are combined", func() {
		BeforeEach(func() {
			receipts = append(receipts,
				build(receipt.Descriptor{
					Name: "Dinner", Payer: 0, Subtotal: 100, Total: 110,
					Items: []receipt.ItemDescriptor{
						{Name: "dinner", Price: 60},
						{Name: "wine", Price: 30, Participants: []int{0, 2}},
						{Name: "dessert", Price: 10, Participants: []int{0, 1}, Ratios: []float64{1, 3}},
					},
				}),
				build(receipt.Descriptor{
					Name: "Groceries", Payer: 1, Subtotal: 30, Total: 30,
					Items: []receipt.ItemDescriptor{
						{Name: "staples", Price: 12},
						{Name: "snacks", Price: 18, Participants: []int{1, 2}},
					},
				}),
			)
		})

		It("should sum to zero", func() {
			balances, err := Aggregate(roster, receipts)
			Expect(err).NotTo(HaveOccurred())
			Expect(balances[0].Amount).To(BeNumerically("~", -64.75, 1e-9))
			Expect(balances[1].Amount).To(BeNumerically("~", 13.25, 1e-9))
			Expect(balances[2].Amount).To(BeNumerically("~", 51.5, 1e-9))
		})
	})

	When("there are no receipts", func() {
		It("should return zero balances", func() {
			balances, err := Aggregate(roster, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(balances).To(HaveLen(3))
			for _, b := range balances {
				Expect(b.Amount).To(BeZero())
			}
		})
	})

	When("a receipt does not balance", func() {
		BeforeEach(func() {
			// Hand-built so it skips the receipt builder's own check
			receipts = append(receipts, &receipt.Receipt{
				Name:     "Broken",
				Payer:    group.Participant{Index: 0, Name: "A"},
				Subtotal: 10,
				Total:    10,
				Scaled: []receipt.Allocation{
					{Items: []receipt.LineItem{{Name: "x", Price: 3}}},
					{},
					{},
				},
			})
		})

		It("should return an invariant error", func() {
			_, err := Aggregate(roster, receipts)
			Expect(errors.Is(err, apperr.ErrInvariant)).To(BeTrue())
			Expect(errors.Is(err, ErrUnbalanced)).To(BeTrue())
		})
	})

	When("a receipt was built for another roster", func() {
		BeforeEach(func() {
			receipts = append(receipts, &receipt.Receipt{
				Name:   "Foreign",
				Payer:  group.Participant{Index: 0, Name: "A"},
				Scaled: []receipt.Allocation{{}},
			})
		})

		It("should return an invariant error", func() {
			_, err := Aggregate(roster, receipts)
			Expect(errors.Is(err, apperr.ErrInvariant)).To(BeTrue())
		})
	})

	When("a receipt payer is outside the roster", func() {
		BeforeEach(func() {
			receipts = append(receipts, &receipt.Receipt{
				Name:   "Foreign",
				Payer:  group.Participant{Index: 7, Name: "Z"},
				Scaled: make([]receipt.Allocation, 3),
			})
		})

		It("should return a reference error", func() {
			_, err := Aggregate(roster, receipts)
			Expect(errors.Is(err, apperr.ErrReference)).To(BeTrue())
		})
	})
})

var _ = Describe("Settle", func() {
	var roster group.Roster

	BeforeEach(func() {
		roster = mustRoster("A", "B", "C", "D", "E")
	})

	It("should pay the single creditor from every debtor", func() {
		r := mustRoster("A", "B", "C")
		balances := balancesOf(r, -73.33, 36.665, 36.665)
		txs := Settle(balances)
		Expect(txs).To(HaveLen(2))
		Expect(txs[0].Payer.Name).To(Equal("B"))
		Expect(txs[0].Receiver.Name).To(Equal("A"))
		Expect(txs[0].Amount).To(BeNumerically("~", 36.665, 1e-9))
		Expect(txs[1].Payer.Name).To(Equal("C"))
		Expect(txs[1].Receiver.Name).To(Equal("A"))
		Expect(txs[1].Amount).To(BeNumerically("~", 36.665, 1e-9))
		expectSettled(balances, txs)
	})

	It("should split a large debt across creditors", func() {
		balances := balancesOf(roster, 100, -30, -30, -40, 0)
		txs := Settle(balances)
		Expect(txs).To(Equal([]Transaction{
			{Payer: group.Participant{Index: 0, Name: "A"}, Receiver: group.Participant{Index: 3, Name: "D"}, Amount: 40},
			{Payer: group.Participant{Index: 0, Name: "A"}, Receiver: group.Participant{Index: 2, Name: "C"}, Amount: 30},
			{Payer: group.Participant{Index: 0, Name: "A"}, Receiver: group.Participant{Index: 1, Name: "B"}, Amount: 30},
		}))
		expectSettled(balances, txs)
	})

	It("should not mutate its input", func() {
		balances := balancesOf(roster, 10, -10, 5, -5, 0)
		_ = Settle(balances)
		Expect(balances[0].Amount).To(Equal(10.0))
		Expect(balances[1].Amount).To(Equal(-10.0))
	})

	It("should emit nothing when everyone is settled", func() {
		Expect(Settle(balancesOf(roster, 0, 0, 0, 0, 0))).To(BeEmpty())
	})

	It("should handle an empty or single balance", func() {
		Expect(Settle(nil)).To(BeEmpty())
		Expect(Settle(balancesOf(mustRoster("A"), 0))).To(BeEmpty())
	})

	It("should elide amounts within tolerance of zero", func() {
		balances := balancesOf(roster, 20, 1e-9, -20, -1e-9, 0)
		txs := Settle(balances)
		Expect(txs).To(HaveLen(1))
		Expect(txs[0].Amount).To(Equal(20.0))
		expectSettled(balances, txs)
	})

	It("should settle random zero-sum balances", func() {
		rng := rand.New(rand.NewSource(42))
		for trial := 0; trial < 200; trial++ {
			n := 2 + rng.Intn(9)
			names := make([]string, n)
			amounts := make([]float64, n)
			var sum float64
			for k := range names {
				names[k] = string(rune('A' + k))
				if k < n-1 {
					amounts[k] = float64(rng.Intn(20001)-10000) / 100
					sum += amounts[k]
				}
			}
			amounts[n-1] = -sum

			balances := balancesOf(mustRoster(names...), amounts...)
			expectSettled(balances, Settle(balances))
		}
	})
})

var _ = Describe("Service.Run", func() {
	It("should settle the three-person dinner", func() {
		doc := &parser.Document{
			Roster:      mustRoster("A", "B", "C"),
			Description: "dinner",
			Receipts: []receipt.Descriptor{{
				Name: "Dinner", Payer: 0, Subtotal: 100, Total: 110,
				Items: []receipt.ItemDescriptor{{Name: "dinner", Price: 100}},
			}},
		}

		result, err := newTestService().Run(doc)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Description).To(Equal("dinner"))
		Expect(result.Receipts).To(HaveLen(1))

		for i := 0; i < 3; i++ {
			Expect(result.Receipts[0].Owed(i)).To(BeNumerically("~", 36.67, 0.005))
		}
		Expect(result.Balances[0].Amount).To(BeNumerically("~", -73.33, 0.005))
		Expect(result.Balances[1].Amount).To(BeNumerically("~", 36.67, 0.005))
		Expect(result.Balances[2].Amount).To(BeNumerically("~", 36.67, 0.005))

		Expect(result.Transactions).To(HaveLen(2))
		for _, tx := range result.Transactions {
			Expect(tx.Receiver.Name).To(Equal("A"))
			Expect(tx.Amount).To(BeNumerically("~", 36.67, 0.005))
		}
		Expect([]string{result.Transactions[0].Payer.Name, result.Transactions[1].Payer.Name}).
			To(ConsistOf("B", "C"))
		expectSettled(result.Balances, result.Transactions)
	})

	It("should settle the sample trip file", func() {
		doc, err := parser.ParseFile("../parser/testdata/trip.txt")
		Expect(err).NotTo(HaveOccurred())

		result, err := newTestService().Run(doc)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Transactions).To(HaveLen(2))
		Expect(result.Transactions[0].Payer.Name).To(Equal("Carol"))
		Expect(result.Transactions[0].Receiver.Name).To(Equal("Alice"))
		Expect(result.Transactions[0].Amount).To(BeNumerically("~", 51.5, 1e-9))
		Expect(result.Transactions[1].Payer.Name).To(Equal("Bob"))
		Expect(result.Transactions[1].Amount).To(BeNumerically("~", 13.25, 1e-9))
		expectSettled(result.Balances, result.Transactions)
	})

	It("should abort on the first bad receipt", func() {
		doc := &parser.Document{
			Roster: mustRoster("A", "B"),
			Receipts: []receipt.Descriptor{
				{Name: "ok", Payer: 0, Subtotal: 10, Total: 10, Items: []receipt.ItemDescriptor{{Name: "x", Price: 10}}},
				{Name: "bad", Payer: 1, Subtotal: 0, Total: 10},
			},
		}

		result, err := newTestService().Run(doc)
		Expect(result).To(BeNil())
		Expect(errors.Is(err, apperr.ErrDivision)).To(BeTrue())
	})
})
