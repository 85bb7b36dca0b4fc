package model

import (
	"testing"
)

func TestNextRating(t *testing.T) {
	tests := []struct {
		name      string
		oldAvg    float64
		oldCount  int64
		rating    int
		wantAvg   float64
		wantCount int64
	}{
		{
			name:      "first rating",
			oldAvg:    0,
			oldCount:  0,
			rating:    8,
			wantAvg:   8.0,
			wantCount: 1,
		},
		{
			name:      "second rating averages",
			oldAvg:    8.0,
			oldCount:  1,
			rating:    4,
			wantAvg:   6.0,
			wantCount: 2,
		},
		{
			name:      "zero rating counts",
			oldAvg:    6.0,
			oldCount:  2,
			rating:    0,
			wantAvg:   4.0,
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg, count := NextRating(tt.oldAvg, tt.oldCount, tt.rating)
			if avg != tt.wantAvg {
				t.Errorf("NextRating() avg = %v, want %v", avg, tt.wantAvg)
			}
			if count != tt.wantCount {
				t.Errorf("NextRating() count = %v, want %v", count, tt.wantCount)
			}
		})
	}
}

func TestNextRatingStaysInBounds(t *testing.T) {
	avg, count := 0.0, int64(0)
	for _, r := range []int{10, 10, 0, 5, 10, 0, 3} {
		avg, count = NextRating(avg, count, r)
		if avg < RatingMin || avg > RatingMax {
			t.Fatalf("rating mean %v escaped [%d,%d] after %d reviews", avg, RatingMin, RatingMax, count)
		}
	}
	if count != 7 {
		t.Errorf("review count = %d, want 7", count)
	}
}

func TestValidSubmissionStatus(t *testing.T) {
	for _, status := range []string{SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected} {
		if !ValidSubmissionStatus(status) {
			t.Errorf("ValidSubmissionStatus(%q) = false, want true", status)
		}
	}
	if ValidSubmissionStatus("published") {
		t.Error("ValidSubmissionStatus(published) = true, want false")
	}
}
