package model

import "time"

// DefaultHistoryCapacity is the per-metric ring buffer size.
const DefaultHistoryCapacity = 256

// DefaultSampleBudget is the soft per-provider time budget for one sample.
const DefaultSampleBudget = 2 * time.Millisecond
