package enrich

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CampaignRow is one contact from a manual campaign upload.
type CampaignRow struct {
	Name    string
	Company string
	Title   string
	Email   string
}

// LoadCampaignCSV reads a campaign upload. The first row must be a header
// containing at least "name" and "company"; "title" and "email" are optional.
// Column order does not matter.
func LoadCampaignCSV(r io.Reader) ([]CampaignRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "enrich: read campaign header")
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, eris.New("enrich: campaign csv is missing a name column")
	}
	if _, ok := cols["company"]; !ok {
		return nil, eris.New("enrich: campaign csv is missing a company column")
	}

	cell := func(record []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []CampaignRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "enrich: read campaign row")
		}
		rows = append(rows, CampaignRow{
			Name:    cell(record, "name"),
			Company: cell(record, "company"),
			Title:   cell(record, "title"),
			Email:   cell(record, "email"),
		})
	}
	return rows, nil
}

// ImportCampaign resolves each uploaded contact into the store. Unlike the
// conference path, uploads are operator-curated, so unknown companies are
// admitted without a pre-screen. Rows resolving to existing records only fill
// fields that are still blank.
func (p *Pipeline) ImportCampaign(ctx context.Context, campaign string, rows []CampaignRow) (*Report, error) {
	if campaign == "" {
		return nil, eris.New("enrich: campaign name is required")
	}

	report := &Report{}
	for _, row := range rows {
		report.Processed++

		if row.Name == "" || row.Company == "" {
			report.Skipped++
			continue
		}

		companyID, _, err := p.resolver.FindOrCreateCompany(ctx, row.Company)
		if err != nil {
			report.Failed++
			zap.L().Warn("campaign row failed",
				zap.String("name", row.Name),
				zap.String("company", row.Company),
				zap.Error(err),
			)
			continue
		}

		leadID, created, err := p.resolver.FindOrCreateLead(ctx, row.Name, companyID)
		if err != nil {
			report.Failed++
			zap.L().Warn("campaign row failed",
				zap.String("name", row.Name),
				zap.Error(err),
			)
			continue
		}

		lead, err := p.store.GetLead(ctx, leadID)
		if err != nil {
			report.Failed++
			continue
		}

		changed := created
		if lead.Title == "" && row.Title != "" {
			lead.Title = row.Title
			changed = true
		}
		if lead.Email == "" && row.Email != "" {
			lead.Email = row.Email
			changed = true
		}
		if created {
			lead.Source = "campaign:" + campaign
		}
		if changed {
			if err := p.store.UpdateLead(ctx, lead); err != nil {
				report.Failed++
				continue
			}
		}

		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	zap.L().Info("campaign import finished",
		zap.String("campaign", campaign),
		zap.Int("processed", report.Processed),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}
