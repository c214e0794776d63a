package database

import (
	"fmt"
	"log"

	"agencyops-backend/shared/authz"
	"agencyops-backend/shared/config"
	"agencyops-backend/shared/database/models"
	utils "agencyops-backend/shared/utils/auth"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedDatabase seeds the bootstrap organization, its default role catalog
// and the bootstrap owner account.
func SeedDatabase() error {
	log.Println("🌱 Checking database seed data...")

	cfg := config.GetConfig()

	org, created, err := ensureBootstrapOrganization(cfg.BootstrapOrgName)
	if err != nil {
		return err
	}

	rolesCreated, err := SeedRolesForOrganization(DB, org.ID)
	if err != nil {
		return err
	}

	if err := ensureBootstrapOwner(org, cfg.BootstrapOwnerEmail, cfg.BootstrapOwnerPass); err != nil {
		return err
	}

	if created || rolesCreated > 0 {
		log.Printf("✅ Database seeding completed (%d roles created)", rolesCreated)
	} else {
		log.Println("✅ Database seed data is up to date")
	}

	return nil
}

// SeedRolesForOrganization materializes the default role catalog inside one
// organization. Called at bootstrap and whenever a new organization is
// created. Already-present roles are left untouched so admin edits survive
// restarts.
func SeedRolesForOrganization(db *gorm.DB, orgID uuid.UUID) (int, error) {
	created := 0
	for _, archetype := range authz.DefaultRoleCatalog() {
		var existing models.Role
		result := db.Where("name = ? AND organization_id = ?", archetype.Name, orgID).First(&existing)
		if result.Error == nil {
			continue
		}

		role := models.Role{
			Name:           archetype.Name,
			Description:    archetype.Description,
			Level:          archetype.Level,
			Scope:          archetype.Scope,
			Matrix:         datatypes.NewJSONType(archetype.Matrix),
			IsDefault:      true,
			OrganizationID: orgID,
		}
		if err := db.Create(&role).Error; err != nil {
			return created, fmt.Errorf("failed to seed role %s: %w", archetype.Name, err)
		}
		created++
	}
	return created, nil
}

func ensureBootstrapOrganization(name string) (*models.Organization, bool, error) {
	var org models.Organization
	err := DB.Where("slug = ?", "bootstrap").First(&org).Error
	if err == nil {
		return &org, false, nil
	}

	org = models.Organization{
		Name:             name,
		Slug:             "bootstrap",
		SubscriptionTier: "ENTERPRISE",
		Status:           "ACTIVE",
		OwnerID:          uuid.New(),
	}
	if err := DB.Create(&org).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create bootstrap organization: %w", err)
	}
	return &org, true, nil
}

func ensureBootstrapOwner(org *models.Organization, email, password string) error {
	var existing models.User
	if err := DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil
	}

	var ownerRole models.Role
	if err := DB.Where("name = ? AND organization_id = ?", "OWNER", org.ID).First(&ownerRole).Error; err != nil {
		return fmt.Errorf("OWNER role not seeded: %w", err)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	owner := models.User{
		Email:          email,
		Password:       hashedPassword,
		FirstName:      "Bootstrap",
		LastName:       "Owner",
		Status:         "ACTIVE",
		OrganizationID: org.ID,
	}
	if err := DB.Create(&owner).Error; err != nil {
		return err
	}

	assignment := models.RoleAssignment{
		UserID:         owner.ID,
		RoleID:         ownerRole.ID,
		OrganizationID: org.ID,
		GrantedByID:    owner.ID,
	}
	if err := DB.Create(&assignment).Error; err != nil {
		return err
	}

	// Point the organization at its actual owner now that the user exists.
	org.OwnerID = owner.ID
	DB.Save(org)

	log.Printf("✅ Bootstrap owner created: %s", email)
	return nil
}
