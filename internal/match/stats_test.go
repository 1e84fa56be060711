package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBattingAggregation(t *testing.T) {
	stat := &PlayerMatchStat{MatchID: 1, PlayerID: 10}

	ApplyBallToBatting(stat, &BallEvent{BatsmanID: 10, Runs: 4})
	ApplyBallToBatting(stat, &BallEvent{BatsmanID: 10, Runs: 6})
	ApplyBallToBatting(stat, &BallEvent{BatsmanID: 10, Runs: 1})
	ApplyBallToBatting(stat, &BallEvent{BatsmanID: 10})

	assert.Equal(t, 11, stat.Batting.RunsScored)
	assert.Equal(t, 4, stat.Batting.BallsFaced)
	assert.Equal(t, 1, stat.Batting.Fours)
	assert.Equal(t, 1, stat.Batting.Sixes)
	assert.True(t, stat.PerformanceTypes.Batting)
	assert.False(t, stat.Batting.IsOut)
}

func TestWideIsNotABallFaced(t *testing.T) {
	stat := &PlayerMatchStat{MatchID: 1, PlayerID: 10}
	ApplyBallToBatting(stat, &BallEvent{BatsmanID: 10, ExtraType: extraPtr(ExtraWide)})
	assert.Equal(t, 0, stat.Batting.BallsFaced)

	// A no-ball is still faced and bat runs count.
	ApplyBallToBatting(stat, &BallEvent{BatsmanID: 10, Runs: 4, ExtraType: extraPtr(ExtraNoBall)})
	assert.Equal(t, 1, stat.Batting.BallsFaced)
	assert.Equal(t, 4, stat.Batting.RunsScored)
	assert.Equal(t, 1, stat.Batting.Fours)
}

func TestByesNotCreditedToBatsman(t *testing.T) {
	stat := &PlayerMatchStat{MatchID: 1, PlayerID: 10}
	ApplyBallToBatting(stat, &BallEvent{BatsmanID: 10, Runs: 4, ExtraType: extraPtr(ExtraBye)})
	assert.Equal(t, 0, stat.Batting.RunsScored)
	assert.Equal(t, 0, stat.Batting.Fours)
	assert.Equal(t, 1, stat.Batting.BallsFaced)
}

func TestDismissalRecordedOnStriker(t *testing.T) {
	stat := &PlayerMatchStat{MatchID: 1, PlayerID: 10}
	out := uint(10)
	catcher := uint(33)

	ApplyBallToBatting(stat, &BallEvent{
		BatsmanID: 10, BowlerID: 20, IsWicket: true,
		DismissalType: dismissalPtr(DismissalCaught),
		PlayerOutID:   &out,
		FielderIDs:    UintList{catcher},
	})

	assert.True(t, stat.Batting.IsOut)
	require.NotNil(t, stat.Batting.DismissedByID)
	assert.Equal(t, uint(20), *stat.Batting.DismissedByID)
	require.NotNil(t, stat.Batting.CaughtByID)
	assert.Equal(t, uint(33), *stat.Batting.CaughtByID)
}

func TestRunOutDoesNotCreditBowler(t *testing.T) {
	batsman := &PlayerMatchStat{MatchID: 1, PlayerID: 10}
	bowler := &PlayerMatchStat{MatchID: 1, PlayerID: 20}
	out := uint(10)
	ball := &BallEvent{
		BatsmanID: 10, BowlerID: 20, Runs: 1, IsWicket: true,
		DismissalType: dismissalPtr(DismissalRunOut), PlayerOutID: &out,
	}

	ApplyBallToBatting(batsman, ball)
	ApplyBallToBowling(bowler, ball)

	assert.True(t, batsman.Batting.IsOut)
	assert.Nil(t, batsman.Batting.DismissedByID)
	assert.Equal(t, 0, bowler.Bowling.WicketsTaken)
}

func TestBowlingAggregation(t *testing.T) {
	stat := &PlayerMatchStat{MatchID: 1, PlayerID: 20}
	out := uint(10)

	ApplyBallToBowling(stat, &BallEvent{BowlerID: 20, Runs: 4})
	ApplyBallToBowling(stat, &BallEvent{BowlerID: 20, Runs: 1, ExtraRuns: 1, ExtraType: extraPtr(ExtraWide)})
	ApplyBallToBowling(stat, &BallEvent{BowlerID: 20, ExtraRuns: 1, ExtraType: extraPtr(ExtraNoBall)})
	ApplyBallToBowling(stat, &BallEvent{BowlerID: 20, Runs: 4, ExtraType: extraPtr(ExtraBye)})
	ApplyBallToBowling(stat, &BallEvent{
		BowlerID: 20, IsWicket: true,
		DismissalType: dismissalPtr(DismissalBowled), PlayerOutID: &out,
	})

	// 4 off the bat + 2 from the wide + 1 from the no-ball; byes excluded.
	assert.Equal(t, 7, stat.Bowling.RunsConceded)
	// Wide and no-ball are not legal deliveries.
	assert.Equal(t, 3, stat.Bowling.BallsBowled)
	assert.Equal(t, 1, stat.Bowling.Wides)
	assert.Equal(t, 1, stat.Bowling.NoBalls)
	assert.Equal(t, 1, stat.Bowling.WicketsTaken)
}

func TestFieldingCredits(t *testing.T) {
	fielder := &PlayerMatchStat{MatchID: 1, PlayerID: 33}

	ApplyBallToFielding(fielder, &BallEvent{IsWicket: true, DismissalType: dismissalPtr(DismissalCaught)})
	ApplyBallToFielding(fielder, &BallEvent{IsWicket: true, DismissalType: dismissalPtr(DismissalRunOut)})
	ApplyBallToFielding(fielder, &BallEvent{IsWicket: true, DismissalType: dismissalPtr(DismissalStumped)})
	ApplyBallToFielding(fielder, &BallEvent{}) // not a wicket, no credit

	assert.Equal(t, 1, fielder.Fielding.Catches)
	assert.Equal(t, 1, fielder.Fielding.RunOuts)
	assert.Equal(t, 1, fielder.Fielding.Stumpings)
	assert.True(t, fielder.PerformanceTypes.Fielding)
}

func TestNonStrikerRunOutVictim(t *testing.T) {
	victim := &PlayerMatchStat{MatchID: 1, PlayerID: 11}
	out := uint(11)
	ball := &BallEvent{
		BatsmanID: 10, BowlerID: 20, IsWicket: true,
		DismissalType: dismissalPtr(DismissalRunOut), PlayerOutID: &out,
	}
	ApplyBallToDismissed(victim, ball)
	assert.True(t, victim.Batting.IsOut)
	assert.Equal(t, 0, victim.Batting.BallsFaced)

	// Not the victim: untouched.
	other := &PlayerMatchStat{MatchID: 1, PlayerID: 12}
	ApplyBallToDismissed(other, ball)
	assert.False(t, other.Batting.IsOut)
}

func TestStrikeRateDerived(t *testing.T) {
	stat := &PlayerMatchStat{Batting: BattingStats{RunsScored: 50, BallsFaced: 40}}
	assert.InDelta(t, 125.0, stat.Batting.StrikeRate(), 0.001)

	empty := &PlayerMatchStat{}
	assert.Zero(t, empty.Batting.StrikeRate())
}

func TestEconomyRateDerived(t *testing.T) {
	stat := &PlayerMatchStat{Bowling: BowlingStats{RunsConceded: 30, BallsBowled: 30}}
	assert.InDelta(t, 6.0, stat.Bowling.EconomyRate(), 0.001)
	assert.Equal(t, "5.0", stat.Bowling.OversDisplay())

	empty := &PlayerMatchStat{}
	assert.Zero(t, empty.Bowling.EconomyRate())
	assert.Equal(t, "0.0", empty.Bowling.OversDisplay())
}

func TestViewAttachesDerivedRates(t *testing.T) {
	stat := &PlayerMatchStat{
		Batting: BattingStats{RunsScored: 50, BallsFaced: 40},
		Bowling: BowlingStats{RunsConceded: 12, BallsBowled: 13},
	}
	view := stat.View()
	assert.InDelta(t, 125.0, view.StrikeRate, 0.001)
	assert.InDelta(t, 12.0/(13.0/6.0), view.EconomyRate, 0.001)
	assert.Equal(t, "2.1", view.OversBowled)
}
