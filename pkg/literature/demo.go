package literature

import (
	"time"
)

func demoDate(year int, month time.Month) *time.Time {
	value := time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
	return &value
}

// DemoStudies backs the --demo flag with representative sample records.
func DemoStudies() []Study {
	return []Study{
		{
			PMID:    "39000001",
			Title:   "Tenecteplase versus alteplase before thrombectomy in large vessel occlusion stroke: a randomized controlled trial",
			Journal: "The Lancet Neurology",
			PublicationDate: demoDate(2026, time.July),
			Abstract: "In this multicenter randomized controlled trial we enrolled 1024 patients with large vessel occlusion stroke presenting within 4.5 hours. " +
				"The primary outcome of functional independence at 90 days occurred in 57% versus 51% of patients (OR 1.28, 95% CI 1.02-1.61, p=0.03). " +
				"Mortality did not differ significantly between groups. " +
				"These results support tenecteplase as first-line thrombolysis before thrombectomy.",
			PublicationTypes: []string{"Randomized Controlled Trial", "Multicenter Study"},
			Affiliations:     []string{"Department of Neurology, University Hospital Heidelberg, Germany", "Stroke Center, Hospices Civils de Lyon, France"},
			CountryHints:     []string{"Deutschland", "Frankreich"},
			DOI:              "10.1000/demo.39000001",
		},
		{
			PMID:    "39000002",
			Title:   "Intensive blood pressure lowering after endovascular thrombectomy: meta-analysis of individual patient data",
			Journal: "JAMA Neurology",
			PublicationDate: demoDate(2026, time.July),
			Abstract: "We performed a meta-analysis of four randomized trials including 1560 patients treated with endovascular thrombectomy. " +
				"Intensive blood pressure management was associated with worse functional outcome (RR 0.82, 95% CI 0.72-0.94). " +
				"Symptomatic intracranial hemorrhage rates were similar. " +
				"The findings argue against aggressive blood pressure targets after successful reperfusion.",
			PublicationTypes: []string{"Meta-Analysis"},
			Affiliations:     []string{"George Institute for Global Health, Sydney, Australia"},
			CountryHints:     []string{"Australien"},
			DOI:              "10.1000/demo.39000002",
		},
		{
			PMID:    "39000003",
			Title:   "Mobile stroke units and door-to-needle times in rural emergency networks: a prospective registry study",
			Journal: "Stroke",
			PublicationDate: demoDate(2026, time.June),
			Abstract: "This prospective registry study included 412 patients treated in a rural mobile stroke unit network. " +
				"Median door-to-needle time was reduced from 48 to 31 minutes. " +
				"Prehospital stroke management significantly improved thrombolysis rates (p<0.001).",
			PublicationTypes: []string{"Observational Study", "Journal Article"},
			Affiliations:     []string{"Department of Neurology, Universitätsklinikum Freiburg, Germany"},
			CountryHints:     []string{"Deutschland"},
		},
		{
			PMID:    "39000004",
			Title:   "Endothelial progenitor cells in a murine model of cerebral ischemia",
			Journal: "Journal of Experimental Stroke Research",
			PublicationDate: demoDate(2026, time.June),
			Abstract: "We investigated endothelial progenitor cell migration in a mouse model of middle cerebral artery occlusion. " +
				"Cell culture experiments showed enhanced angiogenesis in vitro.",
			PublicationTypes: []string{"Journal Article"},
			Affiliations:     []string{"Institute of Experimental Medicine, Prague, Czech Republic"},
		},
	}
}
