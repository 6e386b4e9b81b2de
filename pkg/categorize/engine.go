package categorize

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/billfold/billfold/pkg/models"
)

// Uncategorized is the fallback category for transactions no rule claims.
const Uncategorized = "uncategorized"

// ReviewSink receives transactions that fell through to the fallback so
// an operator can assign them a category later.
type ReviewSink interface {
	AppendReview(tx models.Transaction) error
}

// Engine assigns categories: exact merchant mapping first, then ordered
// regex rules, then the uncategorized fallback plus a review-log entry.
// First match wins, so the same inputs always categorize the same way.
type Engine struct {
	mu        sync.RWMutex
	merchants *MerchantMap
	rules     []compiledRule
	rulesPath string
	review    ReviewSink
	logger    *log.Logger
}

func New(merchants *MerchantMap, rulesPath string, review ReviewSink, logger *log.Logger) (*Engine, error) {
	rules, err := loadRules(rulesPath)
	if err != nil {
		return nil, err
	}
	return &Engine{
		merchants: merchants,
		rules:     rules,
		rulesPath: rulesPath,
		review:    review,
		logger:    logger,
	}, nil
}

// Categorize resolves the category for one transaction. Side-effect-free
// except for the review log when the fallback is hit.
func (e *Engine) Categorize(tx models.Transaction) (string, string) {
	if cat, ok := e.merchants.Lookup(tx.Merchant); ok {
		return cat.Category, cat.SubCategory
	}

	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	for _, r := range rules {
		if r.txType != "" && r.txType != tx.Type {
			continue
		}
		if r.re.MatchString(tx.Description) || r.re.MatchString(tx.Merchant) {
			return r.category, r.subCategory
		}
	}

	e.logger.Info("transaction uncategorized", "merchant", tx.Merchant, "description", tx.Description)
	if e.review != nil {
		if err := e.review.AppendReview(tx); err != nil {
			e.logger.Warn("failed to append review log", "error", err)
		}
	}
	return Uncategorized, ""
}

// Correct records an operator's category for a merchant. Future
// transactions with that merchant resolve through the exact mapping and
// bypass the regex rules.
func (e *Engine) Correct(merchant, category, subCategory string) error {
	return e.merchants.Upsert(merchant, Category{Category: category, SubCategory: subCategory})
}

// Reload re-reads both rule files without interrupting in-flight
// categorization of other documents.
func (e *Engine) Reload() error {
	if err := e.merchants.Reload(); err != nil {
		return err
	}
	rules, err := loadRules(e.rulesPath)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.rules = rules
	e.mu.Unlock()
	return nil
}
