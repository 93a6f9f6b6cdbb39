package admin

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/export"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
	timehelper "github.com/frc-scouting/scout-sync/pkg/timeHelper"
	"github.com/frc-scouting/scout-sync/repos/records"
	resend "github.com/frc-scouting/scout-sync/repos/resend"
)

// Mailer sends a finished export.
type Mailer interface {
	SendExport(ctx context.Context, mail resend.ExportMail, csv []byte) error
}

type AdminService struct {
	repo   *records.Repository
	mailer Mailer
	logger *zap.Logger
	now    func() time.Time
}

func NewAdminService(repo *records.Repository, mailer Mailer, logger *zap.Logger) *AdminService {
	return &AdminService{repo: repo, mailer: mailer, logger: logger, now: time.Now}
}

// DeleteRecent removes entries created inside the recent window.
func (s *AdminService) DeleteRecent(ctx context.Context, purposes []scouting.FormPurpose) (map[string]int, error) {
	since := timehelper.RecentSince(s.now().UTC())
	return s.deleteEach(purposes, func(p scouting.FormPurpose) (int, error) {
		return s.repo.DeleteSince(ctx, p, since)
	})
}

func (s *AdminService) DeleteAll(ctx context.Context, purposes []scouting.FormPurpose) (map[string]int, error) {
	return s.deleteEach(purposes, func(p scouting.FormPurpose) (int, error) {
		return s.repo.DeleteAll(ctx, p)
	})
}

func (s *AdminService) deleteEach(purposes []scouting.FormPurpose, del func(scouting.FormPurpose) (int, error)) (map[string]int, error) {
	out := make(map[string]int, len(purposes))
	for _, p := range purposes {
		n, err := del(p)
		if err != nil {
			return nil, err
		}
		out[string(p)] = n
		s.logger.Info("entries deleted", zap.String("purpose", string(p)), zap.Int("count", n))
	}
	return out, nil
}

// Export renders the entries of a purpose as CSV. An empty event code
// exports every event.
func (s *AdminService) Export(ctx context.Context, purpose scouting.FormPurpose, eventCode string) (string, []byte, int, error) {
	recs, err := s.repo.ListRecords(ctx, scouting.ResolveScope(scouting.ScopeEvent, eventCode, purpose, s.now()))
	if err != nil {
		return "", nil, 0, err
	}
	data, err := export.Bytes(purpose, recs)
	if err != nil {
		return "", nil, 0, err
	}
	return export.FileName(s.now()), data, len(recs), nil
}

func (s *AdminService) MailExport(ctx context.Context, request MailExportRequest) (int, error) {
	purpose, err := scouting.ParsePurpose(request.Purpose)
	if err != nil {
		return 0, err
	}
	filename, data, rows, err := s.Export(ctx, purpose, request.EventCode)
	if err != nil {
		return 0, err
	}

	err = s.mailer.SendExport(ctx, resend.ExportMail{
		To:        request.To,
		Purpose:   string(purpose),
		EventCode: request.EventCode,
		Filename:  filename,
		Rows:      rows,
	}, data)
	if err != nil {
		return 0, err
	}
	s.logger.Info("export mailed", zap.Strings("to", request.To), zap.String("purpose", string(purpose)), zap.Int("rows", rows))
	return rows, nil
}
