package analysis

import (
	"math"
	"testing"
	"time"
)

func TestNormalizeAmounts(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     []float64
		currency Currency
	}{
		{
			name:     "rupee symbol with crore unit",
			text:     "order worth ₹5 crore from the ministry",
			want:     []float64{5e7},
			currency: CurrencyINR,
		},
		{
			name:     "rupee symbol bare value",
			text:     "consideration of ₹1,50,000",
			want:     []float64{150000},
			currency: CurrencyINR,
		},
		{
			name:     "rs prefix with lakh",
			text:     "Rs. 250 lakh payable",
			want:     []float64{250 * 1e5},
			currency: CurrencyINR,
		},
		{
			name:     "inr prefix",
			text:     "INR 1,200 million facility",
			want:     []float64{1200 * 1e6},
			currency: CurrencyINR,
		},
		{
			name:     "usd prefix",
			text:     "USD 3 million investment",
			want:     []float64{3e6},
			currency: CurrencyUSD,
		},
		{
			name:     "bare number with unit",
			text:     "capacity addition of 150 crore units",
			want:     []float64{150 * 1e7},
			currency: CurrencyINR,
		},
		{
			name: "currency and unit span claimed once",
			text: "contract valued at ₹150 crore announced",
			want: []float64{1.5e9},
		},
		{
			name: "multiple amounts",
			text: "revenue of ₹10 crore and profit of ₹2 crore",
			want: []float64{1e8, 2e7},
		},
		{
			name: "no amounts",
			text: "board meeting scheduled for next week",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAmounts(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("NormalizeAmounts(%q) returned %d amounts, want %d: %+v", tt.text, len(got), len(tt.want), got)
			}
			for i, want := range tt.want {
				if math.Abs(got[i].Value-want) > 1e-9 {
					t.Errorf("amount[%d] = %v, want %v", i, got[i].Value, want)
				}
			}
			if tt.currency != "" && len(got) > 0 && got[0].Currency != tt.currency {
				t.Errorf("currency = %s, want %s", got[0].Currency, tt.currency)
			}
		})
	}
}

func TestNormalizeAmountsDropsUnparseable(t *testing.T) {
	// The pattern requires digits, so a stray symbol yields nothing rather
	// than an error.
	if got := NormalizeAmounts("₹ crore"); len(got) != 0 {
		t.Errorf("expected no amounts, got %+v", got)
	}
}

func TestNormalizePercentages(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []ExtractedPercentage
	}{
		{
			name: "bare percent",
			text: "margin of 12.5%",
			want: []ExtractedPercentage{{Value: 12.5, Kind: PercentStandard}},
		},
		{
			name: "percent word",
			text: "grew 8 percent year on year",
			want: []ExtractedPercentage{{Value: 8, Kind: PercentStandard}},
		},
		{
			name: "increase phrase",
			text: "an increase of 300 over last year",
			want: []ExtractedPercentage{{Value: 300, Kind: PercentIncrease}},
		},
		{
			name: "growth phrase",
			text: "growth of 25.5 in the segment",
			want: []ExtractedPercentage{{Value: 25.5, Kind: PercentGrowth}},
		},
		{
			name: "decline phrase",
			text: "decline of 4 in volumes",
			want: []ExtractedPercentage{{Value: 4, Kind: PercentDecline}},
		},
		{
			name: "phrase and percent share one number",
			text: "increase of 300% in profits",
			want: []ExtractedPercentage{{Value: 300, Kind: PercentIncrease}},
		},
		{
			name: "nothing",
			text: "routine disclosure",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePercentages(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("NormalizePercentages(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("percentage[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
		ok   bool
	}{
		{"iso", "results for period ending 2025-03-31", time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), true},
		{"indian dashed", "record date 15-08-2025 fixed", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC), true},
		{"indian slashed", "meeting on 01/09/2025", time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), true},
		{"two digit year", "dated 05/06/24", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), true},
		{"invalid calendar date skipped", "code 99-99-2025 and then 2025-01-02", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"no date", "no dates here", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.text)
			if ok != tt.ok {
				t.Fatalf("NormalizeDate(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("NormalizeDate(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
