package apiclient

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
)

// OrgAPI groups the organization endpoints the client consumes as plain
// pass-through calls.
type OrgAPI struct {
	client *Client
}

// MyOrganizations lists the organizations the signed-in user belongs to
func (o *OrgAPI) MyOrganizations(ctx context.Context) ([]model.Organization, error) {
	var orgs []model.Organization
	if err := o.client.get(ctx, "/api/organizations/me", nil, &orgs); err != nil {
		return nil, goerr.Wrap(err, "failed to list organizations")
	}
	return orgs, nil
}

// MyMemberInfo fetches the signed-in user's member profile within an
// organization
func (o *OrgAPI) MyMemberInfo(ctx context.Context, orgID int64) (*model.Member, error) {
	path := "/api/organizations/" + model.FormatID(orgID) + "/members/me"
	var member model.Member
	if err := o.client.get(ctx, path, nil, &member); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch member info", goerr.V("org_id", orgID))
	}
	return &member, nil
}
