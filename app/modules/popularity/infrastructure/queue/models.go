package popularityqueue

// PopularityArgs schedules one aggregation variant run.
type PopularityArgs struct {
	Variant string `json:"variant"`
}

// Kind returns the job type identifier for River.
func (PopularityArgs) Kind() string { return "popularity_refresh" }
