package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"slices"
	"sync"
	"time"

	"UpDownRiver/internal/game/card"
	"UpDownRiver/internal/game/dealer"
	"UpDownRiver/internal/game/table"
	"UpDownRiver/internal/utils"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ---------------------
//        ENGINE
// ---------------------

// Engine runs one game. Every mutating call holds mu for its whole
// duration, including any phase changes it triggers; events are delivered
// afterwards, in call order, outside mu.
type Engine struct {
	mu     sync.RWMutex
	emitMu sync.Mutex

	id         string
	log        *log.Logger
	notifier   Notifier
	dealer     *dealer.Dealer
	followSuit bool

	participants []Participant
	ledger       *card.Ledger
	deck         *card.Collection
	table        *card.Collection
	discard      *card.Collection
	trump        *card.Collection
	plays        []table.Play

	phase           Phase
	round           int
	bids            map[int]map[int]int // round -> seat -> bid
	tricks          map[int]map[int]int // round -> seat -> tricks taken
	turn            int
	tricksRemaining int
	lastTrickWinner int
	results         []RoundResult

	pending []Event
}

type Option func(*Engine)

func WithID(id string) Option {
	return func(e *Engine) { e.id = id }
}

// WithRand sets the source used for every shuffle.
func WithRand(rnd *rand.Rand) Option {
	return func(e *Engine) { e.dealer = dealer.NewDealer(rnd) }
}

func WithSeed(seed int64) Option {
	return func(e *Engine) { e.dealer = dealer.NewSeeded(seed) }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithFollowSuit toggles the rule that a player holding the led suit must
// play it. On by default.
func WithFollowSuit(on bool) Option {
	return func(e *Engine) { e.followSuit = on }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		id:              uuid.NewString(),
		followSuit:      true,
		ledger:          card.NewLedger(),
		bids:            make(map[int]map[int]int),
		tricks:          make(map[int]map[int]int),
		turn:            -1,
		lastTrickWinner: -1,
	}
	for _, o := range opts {
		o(e)
	}
	if e.dealer == nil {
		e.dealer = dealer.NewSeeded(time.Now().UnixNano())
	}
	if e.log == nil {
		e.log = utils.Named("engine")
	}
	e.log = e.log.With("game", e.id)
	e.table = e.ledger.NewCollection("table")
	e.discard = e.ledger.NewCollection("discard")
	e.trump = e.ledger.NewCollection("trump")
	return e
}

func (e *Engine) ID() string { return e.id }

// do runs one mutating operation under the lock and then publishes the
// events it produced.
func (e *Engine) do(op string, fn func() error) error {
	e.mu.Lock()
	err := fn()
	events := e.pending
	e.pending = nil
	switch {
	case errors.Is(err, ErrCollectionInvariant):
		e.log.Error("card custody violated", "op", op, "err", err)
	case err != nil:
		e.log.Debug("rejected", "op", op, "err", err)
	}
	e.emitMu.Lock()
	e.mu.Unlock()
	defer e.emitMu.Unlock()

	if err != nil || e.notifier == nil {
		return err
	}
	for _, ev := range events {
		e.notifier.Notify(ev)
	}
	return nil
}

func (e *Engine) emit(ev Event) {
	ev.GameID = e.id
	if ev.Round == 0 {
		ev.Round = e.round
	}
	e.pending = append(e.pending, ev)
}

func (e *Engine) invariant(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCollectionInvariant, op, err)
}

// --------------------------
//          SETUP
// --------------------------

// SetParticipants seats the players in order and binds each of them to this
// engine. It can succeed only once, before the game starts. If a Bind fails,
// participants bound earlier in the call are released when they implement
// Unbinder; others stay bound and cannot be seated again.
func (e *Engine) SetParticipants(ps []Participant) error {
	return e.do("set_participants", func() error {
		if ps == nil {
			return fmt.Errorf("%w: participant list is nil", ErrInvalidArgument)
		}
		if e.phase != PhaseNotStarted {
			return fmt.Errorf("%w: the game has already started", ErrInvalidState)
		}
		if e.participants != nil {
			return fmt.Errorf("%w: participants have already been set", ErrInvalidState)
		}
		ids := make(map[string]bool, len(ps))
		hands := make(map[*card.Collection]bool, len(ps))
		for i, p := range ps {
			if isNil(p) {
				return fmt.Errorf("%w: participant %d is nil", ErrInvalidArgument, i)
			}
			if !reflect.TypeOf(p).Comparable() {
				return fmt.Errorf("%w: participant %d has an incomparable type %T", ErrInvalidArgument, i, p)
			}
			if ids[p.ID()] {
				return fmt.Errorf("%w: participant %q seated twice", ErrInvalidArgument, p.ID())
			}
			ids[p.ID()] = true
			if p.Game() != nil {
				return fmt.Errorf("%w: participant %q is already bound to game %s", ErrInvalidArgument, p.ID(), p.Game().ID())
			}
			h := p.Hand()
			if h == nil || !h.Empty() {
				return fmt.Errorf("%w: participant %q must come with an empty hand", ErrInvalidArgument, p.ID())
			}
			if hands[h] {
				return fmt.Errorf("%w: participant %q shares a hand", ErrInvalidArgument, p.ID())
			}
			hands[h] = true
			if l := h.Ledger(); l != nil && l != e.ledger {
				return fmt.Errorf("%w: participant %q holds a hand from another game", ErrInvalidArgument, p.ID())
			}
		}
		if len(ps) < MinPlayers {
			return fmt.Errorf("%w: there must be at least %d participants, got %d", ErrInvalidArgument, MinPlayers, len(ps))
		}

		for i, p := range ps {
			if err := p.Bind(e); err != nil {
				e.unbind(ps[:i])
				return fmt.Errorf("%w: bind %q: %w", ErrInvalidArgument, p.ID(), err)
			}
		}
		for _, p := range ps {
			if err := e.ledger.Track(p.Hand()); err != nil {
				return e.invariant("track hand", err)
			}
		}
		e.participants = slices.Clone(ps)
		e.log.Info("participants seated", "count", len(ps))
		return nil
	})
}

// StartGame builds and shuffles the deck and deals the first round.
func (e *Engine) StartGame() error {
	return e.do("start_game", func() error {
		if e.phase != PhaseNotStarted {
			return fmt.Errorf("%w: the game has already started", ErrInvalidState)
		}
		if e.participants == nil {
			return fmt.Errorf("%w: participants have not been set", ErrInvalidState)
		}
		if err := checkCapacity(len(e.participants)); err != nil {
			return err
		}
		for _, p := range e.participants {
			if !p.Hand().Empty() {
				return fmt.Errorf("%w: %s was given cards before the deal", ErrInvalidState, p.ID())
			}
		}
		deck, err := e.dealer.BuildDeck(e.ledger)
		if err != nil {
			return e.invariant("build deck", err)
		}
		e.deck = deck
		e.round = 1
		e.log.Info("game started", "players", len(e.participants))
		return e.dealRound()
	})
}

// dealRound shuffles the deck, deals the round one card per seat per pass
// and turns up the trump card.
func (e *Engine) dealRound() error {
	n := CardsPerRound(e.round)
	e.dealer.Shuffle(e.deck)
	if err := e.dealer.Deal(e.deck, e.hands(), n); err != nil {
		return e.invariant("deal", err)
	}
	trump, err := e.dealer.TurnUp(e.deck, e.trump)
	if err != nil {
		return e.invariant("turn up trump", err)
	}

	e.bids[e.round] = make(map[int]int, len(e.participants))
	e.tricks[e.round] = make(map[int]int, len(e.participants))
	e.phase = PhasePlacingBids
	e.turn = -1
	e.tricksRemaining = n
	e.lastTrickWinner = -1
	e.plays = nil

	e.emit(Event{Kind: EventRoundDealt, Trump: &trump, Hands: e.handsSnapshot()})
	e.log.Info("round dealt", "round", e.round, "cards", n, "trump", trump)
	return nil
}

// --------------------------
//         BIDDING
// --------------------------

// PlaceBid records p's bid for the current round. Bids may arrive in any
// order; the last one opens the card play.
func (e *Engine) PlaceBid(p Participant, bid int) error {
	return e.do("place_bid", func() error {
		if e.phase != PhasePlacingBids {
			return fmt.Errorf("%w: bids are not being taken (phase %s)", ErrInvalidState, e.phase)
		}
		seat, ok := e.seatOf(p)
		if !ok {
			return fmt.Errorf("%w: participant is not seated in this game", ErrInvalidArgument)
		}
		bids := e.bids[e.round]
		if _, done := bids[seat]; done {
			return fmt.Errorf("%w: %s has already bid in round %d", ErrInvalidState, p.ID(), e.round)
		}
		if limit := CardsPerRound(e.round); bid < 0 || bid > limit {
			return fmt.Errorf("%w: bid %d not in [0,%d]", ErrInvalidArgument, bid, limit)
		}

		bids[seat] = bid
		e.emit(Event{Kind: EventBidPlaced, Participant: p.ID(), Bid: bid})
		e.log.Debug("bid placed", "round", e.round, "player", p.ID(), "bid", bid)
		if len(bids) == len(e.participants) {
			e.openPlay()
		}
		return nil
	})
}

func (e *Engine) openPlay() {
	e.phase = PhasePlayingCards
	e.turn = leaderFor(e.round, len(e.participants))
	e.plays = nil
	leader := e.participants[e.turn].ID()
	e.emit(Event{Kind: EventBiddingClosed, Participant: leader})
	e.log.Info("bidding closed", "round", e.round, "leader", leader)
}

// --------------------------
//          PLAYING
// --------------------------

// PlayCard moves c from p's hand to the table. Completing a trick, a round
// or the game happens inside the same call.
func (e *Engine) PlayCard(p Participant, c card.Card) error {
	return e.do("play_card", func() error {
		if e.phase != PhasePlayingCards {
			return fmt.Errorf("%w: cards cannot be played now (phase %s)", ErrInvalidState, e.phase)
		}
		seat, ok := e.seatOf(p)
		if !ok {
			return fmt.Errorf("%w: participant is not seated in this game", ErrInvalidArgument)
		}
		if seat != e.turn {
			return fmt.Errorf("%w: waiting for %s", ErrNotYourTurn, e.participants[e.turn].ID())
		}
		if !c.Valid() {
			return fmt.Errorf("%w: no such card %+v", ErrInvalidArgument, c)
		}
		hand := p.Hand()
		if !hand.Contains(c) {
			return fmt.Errorf("%w: %s does not hold %s", ErrInvalidArgument, p.ID(), c)
		}
		if lead, ok := table.LeadSuit(e.plays); ok && e.followSuit && c.Suit != lead && hand.ContainsSuit(lead) {
			return fmt.Errorf("%w: %s must follow %s", ErrInvalidArgument, p.ID(), lead)
		}

		if err := hand.MoveTo(e.table, c); err != nil {
			return e.invariant("play", err)
		}
		e.plays = append(e.plays, table.Play{Seat: seat, Player: p.ID(), Card: c})
		e.emit(Event{Kind: EventCardPlayed, Participant: p.ID(), Card: &c})
		return e.advancePlayer()
	})
}

// advancePlayer passes the turn to the next seat, or settles the trick once
// every seat has played.
func (e *Engine) advancePlayer() error {
	if len(e.plays) < len(e.participants) {
		e.turn = (e.turn + 1) % len(e.participants)
		return nil
	}
	return e.advanceTrick()
}

// advanceTrick awards the trick, clears the table and either lets the winner
// lead the next trick or closes the round.
func (e *Engine) advanceTrick() error {
	trump, _ := e.trump.At(0)
	win, ok := table.Winner(e.plays, trump.Suit)
	if !ok {
		return e.invariant("trick winner", card.ErrCardNotFound)
	}
	if err := e.table.TransferAll(e.discard); err != nil {
		return e.invariant("clear table", err)
	}
	e.tricks[e.round][win.Seat]++
	e.lastTrickWinner = win.Seat
	e.tricksRemaining--
	e.emit(Event{Kind: EventTrickWon, Participant: win.Player, Card: &win.Card, Trick: e.plays})
	e.log.Debug("trick won", "round", e.round, "winner", win.Player, "card", win.Card)
	e.plays = nil

	if e.tricksRemaining > 0 {
		e.turn = win.Seat
		return nil
	}
	return e.advanceRound()
}

// advanceRound books the round, gathers every card back into the deck and
// deals the next round or ends the game.
func (e *Engine) advanceRound() error {
	result := e.roundResult(e.round)
	e.results = append(e.results, result)
	e.turn = -1
	e.emit(Event{Kind: EventRoundComplete, Result: &result})
	e.log.Info("round complete", "round", e.round, "made", result.Made)

	if err := e.collect(); err != nil {
		return e.invariant("collect", err)
	}
	if e.round+1 > Rounds {
		e.phase = PhaseGameComplete
		standings := e.standings()
		winners := leaders(standings)
		e.emit(Event{Kind: EventGameComplete, Standings: standings, Winners: winners})
		e.log.Info("game complete", "winners", winners)
		return nil
	}
	e.round++
	return e.dealRound()
}

// collect returns hands, table, discard and the trump card to the deck.
func (e *Engine) collect() error {
	for _, h := range e.hands() {
		if err := h.TransferAll(e.deck); err != nil {
			return err
		}
	}
	for _, c := range []*card.Collection{e.table, e.discard, e.trump} {
		if err := c.TransferAll(e.deck); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------
//          HELPERS
// --------------------------

func (e *Engine) seatOf(p Participant) (int, bool) {
	if isNil(p) {
		return -1, false
	}
	for i, q := range e.participants {
		if q == p {
			return i, true
		}
	}
	return -1, false
}

func (e *Engine) unbind(ps []Participant) {
	for _, p := range ps {
		if u, ok := p.(Unbinder); ok {
			u.Unbind(e)
		}
	}
}

func (e *Engine) hands() []*card.Collection {
	out := make([]*card.Collection, len(e.participants))
	for i, p := range e.participants {
		out[i] = p.Hand()
	}
	return out
}

func (e *Engine) handsSnapshot() map[string][]card.Card {
	out := make(map[string][]card.Card, len(e.participants))
	for _, p := range e.participants {
		out[p.ID()] = p.Hand().Cards()
	}
	return out
}

func (e *Engine) bySeat(m map[int]int) map[string]int {
	out := make(map[string]int, len(m))
	for seat, v := range m {
		out[e.participants[seat].ID()] = v
	}
	return out
}

func (e *Engine) roundResult(r int) RoundResult {
	trump, _ := e.trump.At(0)
	res := RoundResult{
		Round:  r,
		Cards:  CardsPerRound(r),
		Trump:  trump,
		Bids:   e.bySeat(e.bids[r]),
		Tricks: make(map[string]int, len(e.participants)),
	}
	for seat, p := range e.participants {
		taken := e.tricks[r][seat]
		res.Tricks[p.ID()] = taken
		if bid, ok := e.bids[r][seat]; ok && bid == taken {
			res.Made = append(res.Made, p.ID())
		}
	}
	return res
}

func (e *Engine) standings() []Standing {
	out := make([]Standing, len(e.participants))
	for i, p := range e.participants {
		out[i].Participant = p.ID()
	}
	for _, res := range e.results {
		for i := range out {
			out[i].Tricks += res.Tricks[out[i].Participant]
			if slices.Contains(res.Made, out[i].Participant) {
				out[i].BidsMade++
			}
		}
	}
	return out
}

// leaders are the participants with the most bids made.
func leaders(standings []Standing) []string {
	best := -1
	var out []string
	for _, s := range standings {
		switch {
		case s.BidsMade > best:
			best = s.BidsMade
			out = []string{s.Participant}
		case s.BidsMade == best:
			out = append(out, s.Participant)
		}
	}
	return out
}

func isNil(p Participant) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
