package services

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/domain/option"
	"github.com/gravadigital/navidad-api/internal/domain/roster"
	"github.com/gravadigital/navidad-api/internal/domain/session"
	"github.com/gravadigital/navidad-api/internal/domain/tally"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
	"github.com/gravadigital/navidad-api/internal/logger"
	"github.com/gravadigital/navidad-api/internal/validation"
)

// ImageResolver convierte una referencia de imagen en una URL para el navegador
type ImageResolver interface {
	URL(ctx context.Context, ref string) (string, error)
}

// VotingService compone el ledger, el recuento y el enrutado de fases
type VotingService struct {
	ledger    *vote.Ledger
	roster    *roster.Roster
	images    ImageResolver
	validator validation.VoteValidation
	log       *log.Logger
}

// NewVotingService crea una nueva instancia del servicio de votación.
// images puede ser nil; las referencias se devuelven tal cual.
func NewVotingService(ledger *vote.Ledger, r *roster.Roster, images ImageResolver) *VotingService {
	return &VotingService{
		ledger: ledger,
		roster: r,
		images: images,
		log:    logger.Service("voting"),
	}
}

// StatusView es el estado de un participante tal como lo muestra el cliente
type StatusView struct {
	Phase       session.Phase `json:"phase"`
	Page        string        `json:"page"`
	DisplayName string        `json:"display_name"`
	HasVoted    bool          `json:"has_voted"`
	MyVote      *vote.Vote    `json:"my_vote,omitempty"`
	Total       int           `json:"total"`
	Remaining   int           `json:"remaining"`
	RosterSize  int           `json:"roster_size"`
	AllVoted    bool          `json:"all_voted"`
	Results     *tally.Result `json:"results,omitempty"`
}

// Update es un elemento del stream en tiempo real
type Update struct {
	Phase session.Phase `json:"phase"`
	Page  string        `json:"page"`
	Tally tally.Result  `json:"tally"`
}

// Options devuelve las opciones con las URLs de imagen resueltas
func (s *VotingService) Options(ctx context.Context) []option.VotingOption {
	opts := s.ledger.Options().All()
	if s.images == nil {
		return opts
	}

	for i := range opts {
		u, err := s.images.URL(ctx, opts[i].ImageRef)
		if err != nil {
			s.log.Warn("image reference left unresolved", "option_id", opts[i].ID, "error", err)
			continue
		}
		opts[i].ImageRef = u
	}
	return opts
}

// Status calcula la vista del participante a partir de una instantánea completa.
// Los resultados solo se incluyen una vez que todos han votado.
func (s *VotingService) Status(ctx context.Context, p auth.Principal) (*StatusView, error) {
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.view(p, snap), nil
}

// Cast emite el voto del participante y devuelve la fase a la que debe ir.
// Un AlreadyVoted también trae la fase, para enviar al votante a la espera
// o a los resultados.
//
// Solo votan sesiones de participantes cuyo nombre está en la lista actual:
// el admin y las cuentas de una lista anterior reciben PermissionDenied.
func (s *VotingService) Cast(ctx context.Context, p auth.Principal, optionID string) (*vote.Vote, session.Phase, error) {
	if !p.IsVoter() {
		s.log.Error("vote rejected: principal is not a voter", "voter_key", p.VoterKey, "role", p.Role)
		return nil, session.PhaseNotVoted, vote.ErrPermissionDenied
	}
	if _, ok := s.roster.Lookup(p.DisplayName); !ok {
		s.log.Error("vote rejected: principal is not on the roster", "voter_key", p.VoterKey, "display_name", p.DisplayName)
		return nil, session.PhaseNotVoted, vote.ErrPermissionDenied
	}
	if err := s.validator.ValidateOptionID(optionID); err != nil {
		return nil, session.PhaseNotVoted, err
	}

	ballot, err := s.ledger.CastVote(ctx, p.VoterKey, optionID, p.DisplayName)
	if err != nil {
		if errors.Is(err, vote.ErrAlreadyVoted) {
			return nil, s.phaseAfterVote(ctx), err
		}
		return nil, session.PhaseNotVoted, err
	}

	return ballot, s.phaseAfterVote(ctx), nil
}

// Results devuelve el recuento en vivo
func (s *VotingService) Results(ctx context.Context) (tally.Result, error) {
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return tally.Result{}, err
	}
	return tally.FromSnapshot(snap, s.ledger.Options(), s.roster.Size()), nil
}

// AdminVotes lista todos los votos registrados
func (s *VotingService) AdminVotes(ctx context.Context, p auth.Principal) ([]vote.Vote, error) {
	if !p.IsAdmin() {
		s.log.Error("vote listing rejected: caller is not admin", "voter_key", p.VoterKey)
		return nil, vote.ErrPermissionDenied
	}

	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Votes, nil
}

// Reset borra todos los votos y comienza una nueva ronda
func (s *VotingService) Reset(ctx context.Context, actor vote.ResetAuthorizer) (int, error) {
	return s.ledger.Reset(ctx, actor)
}

// Stream emite la fase y el recuento del participante en cada instantánea.
// stop cancela la suscripción.
func (s *VotingService) Stream(ctx context.Context, p auth.Principal) (<-chan Update, func(), error) {
	snaps, stop, err := s.ledger.Observe(ctx)
	if err != nil {
		return nil, nil, err
	}

	machine := session.NewMachine()
	if err := machine.BeginAuth(); err != nil {
		stop()
		return nil, nil, err
	}

	out := make(chan Update, 1)
	go func() {
		defer close(out)
		first := true
		for snap := range snaps {
			res := tally.FromSnapshot(snap, s.ledger.Options(), s.roster.Size())
			_, voted := snap.VoteOf(p.VoterKey)

			var phase session.Phase
			if first {
				phase, _ = machine.Authenticated(voted, res)
				first = false
			} else {
				phase = machine.Observe(voted, res)
			}

			select {
			case <-out:
			default:
			}
			out <- Update{Phase: phase, Page: phase.Page(), Tally: res}
		}
	}()

	return out, stop, nil
}

// Health comprueba el almacenamiento de votos
func (s *VotingService) Health(ctx context.Context) error {
	return s.ledger.Health(ctx)
}

func (s *VotingService) view(p auth.Principal, snap vote.Snapshot) *StatusView {
	res := tally.FromSnapshot(snap, s.ledger.Options(), s.roster.Size())
	mine, voted := snap.VoteOf(p.VoterKey)
	phase := session.Route(true, voted, res.AllVoted)

	v := &StatusView{
		Phase:       phase,
		Page:        phase.Page(),
		DisplayName: p.DisplayName,
		HasVoted:    voted,
		Total:       res.Total,
		Remaining:   res.Remaining,
		RosterSize:  res.RosterSize,
		AllVoted:    res.AllVoted,
	}
	if voted {
		v.MyVote = &mine
	}
	if res.AllVoted {
		v.Results = &res
	}
	return v
}

// phaseAfterVote trusts the ledger's acknowledgement; the snapshot only
// decides whether the round is already complete.
func (s *VotingService) phaseAfterVote(ctx context.Context) session.Phase {
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return session.PhaseVoted
	}
	res := tally.FromSnapshot(snap, s.ledger.Options(), s.roster.Size())
	return session.Route(true, true, res.AllVoted)
}
