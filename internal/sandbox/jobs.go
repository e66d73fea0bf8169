package sandbox

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type offer struct {
	ID           string    `json:"id"`
	Intitule     string    `json:"intitule"`
	Description  string    `json:"description"`
	DateCreation string    `json:"dateCreation"`
	TypeContrat  string    `json:"typeContrat"`
	Entreprise   fiber.Map `json:"entreprise"`
	LieuTravail  fiber.Map `json:"lieuTravail"`
	OrigineOffre fiber.Map `json:"origineOffre"`
}

var offers = []offer{
	newOffer("201XKQP", "Développeur Go (H/F)", "Services backend et API en Go.", "CDI", "Octo Data", "75 - Paris 9e"),
	newOffer("201XKQR", "Ingénieur DevOps Kubernetes", "Plateforme Docker et Kubernetes.", "CDI", "Nuage Infra", "69 - Lyon 3e"),
	newOffer("201XKQS", "Développeur Python / SQL", "Pipelines de données Python et SQL.", "CDD", "Datalab", "33 - Bordeaux"),
	newOffer("201XKQT", "Développeur React TypeScript", "Front-end React et TypeScript.", "CDI", "Studio Pixel", "75 - Paris 2e"),
	newOffer("201XKQU", "Administrateur Linux", "Exploitation Linux et Git.", "MIS", "InfraServ", "31 - Toulouse"),
}

func newOffer(id, title, desc, contract, company, place string) offer {
	return offer{
		ID:           id,
		Intitule:     title,
		Description:  desc,
		DateCreation: "2025-11-03T08:15:00.000Z",
		TypeContrat:  contract,
		Entreprise:   fiber.Map{"nom": company},
		LieuTravail:  fiber.Map{"libelle": place},
		OrigineOffre: fiber.Map{"urlOrigine": "https://candidat.francetravail.fr/offres/recherche/detail/" + id},
	}
}

func searchOffers(keywords, location string) []offer {
	out := []offer{}
	for _, o := range offers {
		text := strings.ToLower(o.Intitule + " " + o.Description)
		if !matchesAny(text, keywords) {
			continue
		}
		place, _ := o.LieuTravail["libelle"].(string)
		if location != "" && !strings.Contains(strings.ToLower(place), strings.ToLower(location)) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// matchesAny reports whether any keyword occurs in text. No keywords match
// everything.
func matchesAny(text, keywords string) bool {
	words := strings.Fields(strings.ToLower(keywords))
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func (s *Server) handleJobSearch(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"resultats": searchOffers(c.Query("keywords"), c.Query("location"))})
}

func (s *Server) handleSmartSearch(c *fiber.Ctx) error {
	userID := currentUser(c)
	s.mu.Lock()
	cand, ok := s.candidates[userID]
	var skills []string
	if ok {
		skills = append(skills, cand.Skills...)
	}
	s.mu.Unlock()

	if !ok {
		return c.JSON(fiber.Map{"message": "Aucun CV trouvé. Importez votre CV pour utiliser la recherche intelligente."})
	}

	keywords := strings.Join(skills, " ")
	queries := make([]fiber.Map, 0, len(skills))
	for _, skill := range skills {
		queries = append(queries, fiber.Map{"type": "skill", "keywords": skill})
	}
	return c.JSON(fiber.Map{
		"resultats": searchOffers(keywords, ""),
		"smart_search_params": fiber.Map{
			"keywords":       keywords,
			"location":       "",
			"search_queries": queries,
		},
	})
}

func (s *Server) handleJobStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"code_rome":         c.Query("code_rome"),
		"code_geographique": c.Query("code_geographique"),
		"offres_actives":    len(offers),
		"tension":           "forte",
	})
}

func (s *Server) handleAccessStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"code_rome":          c.Query("code_rome"),
		"code_geographique":  c.Query("code_geographique"),
		"taux_retour_emploi": 0.62,
		"delai_moyen_jours":  74,
	})
}
