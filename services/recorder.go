package services

// Recorder receives domain events for metrics. *metrics.Metrics implements it.
type Recorder interface {
	RoundStarted(pairing string, unpaired int)
	ScoreSubmitted(outcome string)
	MatchConfirmation(action string)
	TournamentFinished()
}

type noopRecorder struct{}

func (noopRecorder) RoundStarted(string, int) {}
func (noopRecorder) ScoreSubmitted(string)    {}
func (noopRecorder) MatchConfirmation(string) {}
func (noopRecorder) TournamentFinished()      {}
