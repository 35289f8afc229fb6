package receipt

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fkhayef/receiptsplit/internal/apperr"
	"github.com/fkhayef/receiptsplit/internal/group"
	"github.com/fkhayef/receiptsplit/internal/receipt/split"
)

var _ = Describe("Service.Build", func() {
	var (
		service *Service
		roster  group.Roster
		desc    Descriptor
		rcpt    *Receipt
		err     error
	)

	BeforeEach(func() {
		service = NewService(split.NewSplitStrategyFactory())
		roster = mustRoster("A", "B", "C")
		desc = Descriptor{
			Name:     "Dinner",
			Payer:    0,
			Subtotal: 100,
			Total:    110,
			Items:    []ItemDescriptor{{Name: "dinner", Price: 100}},
		}
	})

	JustBeforeEach(func() {
		rcpt, err = service.Build(roster, desc)
	})

	When("one item is split among everyone", func() {
		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should resolve the payer", func() {
			Expect(rcpt.Payer).To(Equal(group.Participant{Index: 0, Name: "A"}))
		})

		It("should keep the unscaled allocations", func() {
			for i := 0; i < 3; i++ {
				Expect(rcpt.Allocations[i].Items).To(HaveLen(1))
				Expect(rcpt.Allocations[i].Items[0].Price).To(BeNumerically("~", 100.0/3, 1e-9))
			}
		})

		It("should scale every share by the tax and tip multiplier", func() {
			Expect(rcpt.Multiplier()).To(BeNumerically("~", 1.1, 1e-12))
			for i := 0; i < 3; i++ {
				Expect(rcpt.Owed(i)).To(BeNumerically("~", 36.6667, 1e-4))
			}
		})

		It("should add up to the total", func() {
			Expect(rcpt.CheckTotal()).To(BeNumerically("~", 110, Tolerance))
		})
	})

	When("items use every line shape", func() {
		BeforeEach(func() {
			desc.Subtotal = 49
			desc.Total = 49
			desc.Items = []ItemDescriptor{
				{Name: "pizza", Price: 9},
				{Name: "wine", Price: 10, Participants: []int{0, 2}},
				{Name: "cake", Price: 30, Participants: []int{1, 2}, Ratios: []float64{1, 2}},
			}
		})

		It("should allocate per participant in input order", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(rcpt.Allocations[0].Names()).To(Equal([]string{"pizza", "wine"}))
			Expect(rcpt.Allocations[1].Names()).To(Equal([]string{"pizza", "cake"}))
			Expect(rcpt.Allocations[2].Names()).To(Equal([]string{"pizza", "wine", "cake"}))
		})

		It("should split each item as requested", func() {
			Expect(rcpt.Allocations[0].Prices()).To(Equal([]float64{3, 5}))
			Expect(rcpt.Allocations[1].Prices()[1]).To(BeNumerically("~", 10, 1e-9))
			Expect(rcpt.Allocations[2].Prices()[2]).To(BeNumerically("~", 20, 1e-9))
		})

		It("should conserve each item's price", func() {
			Expect(rcpt.CheckTotal()).To(BeNumerically("~", 49, Tolerance))
		})
	})

	When("a participant gets nothing", func() {
		BeforeEach(func() {
			desc.Subtotal = 10
			desc.Total = 10
			desc.Items = []ItemDescriptor{{Name: "wine", Price: 10, Participants: []int{0, 2}}}
		})

		It("should leave their allocation empty", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(rcpt.Allocations[1].Items).To(BeEmpty())
			Expect(rcpt.Owed(1)).To(BeZero())
		})
	})

	When("the payer is outside the roster", func() {
		BeforeEach(func() {
			desc.Payer = 3
		})

		It("should return a reference error", func() {
			Expect(errors.Is(err, apperr.ErrReference)).To(BeTrue())
		})
	})

	When("an item lists an unknown participant", func() {
		BeforeEach(func() {
			desc.Items = []ItemDescriptor{{Name: "dinner", Price: 100, Participants: []int{0, 5}}}
		})

		It("should return a reference error", func() {
			Expect(errors.Is(err, apperr.ErrReference)).To(BeTrue())
		})
	})

	When("ratio and participant lists differ in length", func() {
		BeforeEach(func() {
			desc.Items = []ItemDescriptor{{Name: "dinner", Price: 100, Participants: []int{0, 1}, Ratios: []float64{1, 2, 3}}}
		})

		It("should return a format error", func() {
			Expect(errors.Is(err, apperr.ErrFormat)).To(BeTrue())
			Expect(errors.Is(err, ErrRatioCountMismatch)).To(BeTrue())
		})
	})

	When("ratios come without participants", func() {
		BeforeEach(func() {
			desc.Items = []ItemDescriptor{{Name: "dinner", Price: 100, Ratios: []float64{1, 2, 3}}}
		})

		It("should return a format error", func() {
			Expect(errors.Is(err, ErrRatiosNeedParticipants)).To(BeTrue())
		})
	})

	When("ratios are all zero", func() {
		BeforeEach(func() {
			desc.Items = []ItemDescriptor{{Name: "dinner", Price: 100, Participants: []int{0, 1}, Ratios: []float64{0, 0}}}
		})

		It("should return a format error wrapping the split error", func() {
			Expect(errors.Is(err, apperr.ErrFormat)).To(BeTrue())
			Expect(errors.Is(err, split.ErrNonPositiveRatios)).To(BeTrue())
		})
	})

	When("the subtotal is zero", func() {
		BeforeEach(func() {
			desc.Subtotal = 0
		})

		It("should return a division error", func() {
			Expect(errors.Is(err, apperr.ErrDivision)).To(BeTrue())
		})
	})

	When("the total is negative", func() {
		BeforeEach(func() {
			desc.Total = -1
		})

		It("should return a format error", func() {
			Expect(errors.Is(err, ErrNegativeTotal)).To(BeTrue())
		})
	})

	When("the items do not add up to the subtotal", func() {
		BeforeEach(func() {
			desc.Items = []ItemDescriptor{{Name: "dinner", Price: 90}}
		})

		It("should return an invariant error", func() {
			Expect(errors.Is(err, apperr.ErrInvariant)).To(BeTrue())
			Expect(errors.Is(err, ErrCheckTotalMismatch)).To(BeTrue())
		})
	})

	When("the total is zero", func() {
		BeforeEach(func() {
			desc.Total = 0
			desc.Items = []ItemDescriptor{{Name: "dinner", Price: 100}}
		})

		It("should scale every share to zero", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(rcpt.CheckTotal()).To(BeZero())
		})
	})
})
