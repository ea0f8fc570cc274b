package core

import "sort"

// UncategorizedLabel is the bucket for transactions whose category was
// deleted or never set.
const UncategorizedLabel = "Uncategorized"

// CategoryBreakdown is a pair of parallel sequences: one label and one exact
// sum per category bucket, same length.
type CategoryBreakdown struct {
	Labels []string
	Sums   []Money
}

// MonthlySeries holds the month-bucketed income/expense balance. The three
// slices are parallel and equally long; Months is sorted ascending. Only
// months that have at least one transaction appear, gaps are not synthesized.
type MonthlySeries struct {
	Months  []string
	Income  []Money
	Expense []Money
}

// CategoryTotal is one row of the dashboard breakdown.
type CategoryTotal struct {
	Name  string
	Total Money
}

// ExpensesByCategory groups the expense transactions of the input by
// category name and sums the amounts per group. Income rows are ignored.
// Labels are sorted lexicographically so the output is deterministic
// run to run.
func ExpensesByCategory(txs []Transaction) CategoryBreakdown {
	sums := make(map[string]int64)
	for _, tx := range txs {
		if tx.Type != Expense {
			continue
		}
		label := tx.CategoryName
		if label == "" {
			label = UncategorizedLabel
		}
		sums[label] += tx.Amount.Cents
	}

	out := CategoryBreakdown{
		Labels: make([]string, 0, len(sums)),
		Sums:   make([]Money, 0, len(sums)),
	}
	for label := range sums {
		out.Labels = append(out.Labels, label)
	}
	sort.Strings(out.Labels)
	for _, label := range out.Labels {
		out.Sums = append(out.Sums, Money{Cents: sums[label]})
	}
	return out
}

// MonthlyBalance buckets the transactions by calendar month ("YYYY-MM") and
// sums income and expense separately within each bucket. A year of 0 means
// all years; otherwise only that year's transactions are considered. Months
// with activity of only one type get an exact zero for the other.
func MonthlyBalance(txs []Transaction, year int) MonthlySeries {
	type pair struct{ income, expense int64 }
	buckets := make(map[string]*pair)
	for _, tx := range txs {
		if year != 0 && tx.Date.Year() != year {
			continue
		}
		key := tx.Date.MonthKey()
		b, ok := buckets[key]
		if !ok {
			b = &pair{}
			buckets[key] = b
		}
		switch tx.Type {
		case Income:
			b.income += tx.Amount.Cents
		case Expense:
			b.expense += tx.Amount.Cents
		}
	}

	out := MonthlySeries{
		Months:  make([]string, 0, len(buckets)),
		Income:  make([]Money, 0, len(buckets)),
		Expense: make([]Money, 0, len(buckets)),
	}
	for key := range buckets {
		out.Months = append(out.Months, key)
	}
	sort.Strings(out.Months)
	for _, key := range out.Months {
		out.Income = append(out.Income, Money{Cents: buckets[key].income})
		out.Expense = append(out.Expense, Money{Cents: buckets[key].expense})
	}
	return out
}

// AvailableYears returns the distinct calendar years present in the
// transaction dates, sorted ascending.
func AvailableYears(txs []Transaction) []int {
	seen := make(map[int]struct{})
	for _, tx := range txs {
		seen[tx.Date.Year()] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// CategoryTotals sums all transactions of the (already filtered) input per
// category name, every type included. Rows are ordered by total descending,
// ties broken by name, mirroring the dashboard breakdown.
func CategoryTotals(txs []Transaction) []CategoryTotal {
	sums := make(map[string]int64)
	for _, tx := range txs {
		label := tx.CategoryName
		if label == "" {
			label = UncategorizedLabel
		}
		sums[label] += tx.Amount.Cents
	}

	totals := make([]CategoryTotal, 0, len(sums))
	for name, cents := range sums {
		totals = append(totals, CategoryTotal{Name: name, Total: Money{Cents: cents}})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total.Cents != totals[j].Total.Cents {
			return totals[i].Total.Cents > totals[j].Total.Cents
		}
		return totals[i].Name < totals[j].Name
	})
	return totals
}

// SumByType returns the exact sum of the amounts of the given type.
func SumByType(txs []Transaction, tt TransactionType) Money {
	var cents int64
	for _, tx := range txs {
		if tx.Type == tt {
			cents += tx.Amount.Cents
		}
	}
	return Money{Cents: cents}
}
